package uploads

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type uploadedFile struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type uploadResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Files   []uploadedFile `json:"files,omitempty"`
}

// Upload handles multipart PDF uploads: at most MaxFilesPerUpload files,
// PDFs only, each stored under a fresh name and echoed back with its
// serving URL. A non-empty baseURL makes the echoed URLs absolute so
// clients behind a proxy get a reachable address.
func Upload(s *Store, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, uploadResponse{Message: "invalid multipart request"})
			return
		}

		headers := r.MultipartForm.File["files"]
		if len(headers) == 0 {
			writeJSON(w, http.StatusBadRequest, uploadResponse{Message: "no files were sent"})
			return
		}
		if len(headers) > MaxFilesPerUpload {
			writeJSON(w, http.StatusBadRequest, uploadResponse{Message: "at most 3 files per upload"})
			return
		}

		var files []uploadedFile
		for _, h := range headers {
			if !isPDF(h.Header.Get("Content-Type"), h.Filename) {
				writeJSON(w, http.StatusBadRequest, uploadResponse{Message: "only PDF files are allowed"})
				return
			}
			f, err := h.Open()
			if err != nil {
				s.log.Error("failed to open upload", zap.String("file", h.Filename), zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, uploadResponse{Message: "failed to store the uploaded files"})
				return
			}
			stored, err := s.Save(h.Filename, f)
			f.Close()
			if err != nil {
				s.log.Error("failed to store upload", zap.String("file", h.Filename), zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, uploadResponse{Message: "failed to store the uploaded files"})
				return
			}
			url := "/uploads/" + stored
			if baseURL != "" {
				url = strings.TrimSuffix(baseURL, "/") + url
			}
			files = append(files, uploadedFile{Name: h.Filename, URL: url})
		}

		writeJSON(w, http.StatusOK, uploadResponse{Success: true, Files: files})
	}
}

// DeleteAll wipes the upload directory.
func DeleteAll(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.RemoveAll(); err != nil {
			writeJSON(w, http.StatusInternalServerError, uploadResponse{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, uploadResponse{Success: true, Message: "all files deleted"})
	}
}

// Serve exposes stored files under /uploads/.
func Serve(s *Store) http.Handler {
	return http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.dir)))
}

func isPDF(contentType, name string) bool {
	return contentType == "application/pdf" ||
		strings.HasSuffix(strings.ToLower(name), ".pdf")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
