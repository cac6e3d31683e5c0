package questions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFiles(t *testing.T) {
	tests := []struct {
		name  string
		files []File
		want  error
	}{
		{name: "no files", files: nil, want: nil},
		{
			name: "valid uploaded pdf",
			files: []File{
				{Name: "notes.pdf", URL: "/uploads/123-notes.pdf"},
			},
		},
		{
			name: "valid absolute url",
			files: []File{
				{Name: "Slides.PDF", URL: "http://localhost:3001/uploads/1-slides.pdf"},
			},
		},
		{
			name: "too many files",
			files: []File{
				{Name: "a.pdf", URL: "/uploads/a.pdf"},
				{Name: "b.pdf", URL: "/uploads/b.pdf"},
				{Name: "c.pdf", URL: "/uploads/c.pdf"},
				{Name: "d.pdf", URL: "/uploads/d.pdf"},
			},
			want: ErrTooManyFiles,
		},
		{
			name:  "not a pdf",
			files: []File{{Name: "virus.exe", URL: "/uploads/virus.exe"}},
			want:  ErrInvalidFiles,
		},
		{
			name:  "bad url source",
			files: []File{{Name: "a.pdf", URL: "file:///etc/passwd"}},
			want:  ErrInvalidFiles,
		},
		{
			name:  "missing url",
			files: []File{{Name: "a.pdf"}},
			want:  ErrInvalidFiles,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFiles(tt.files)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func geminiReply(t *testing.T, text string) string {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	require.NoError(t, err)
	return string(body)
}

func TestGemini_Generate(t *testing.T) {
	payload := `[
		{"question":"What is 2+2?","options":["3","4","5","6"],"correct":1},
		{"question":"","options":["a","b","c","d"],"correct":0},
		{"question":"Too few options","options":["a","b"],"correct":0},
		{"question":"Bad index","options":["a","b","c","d"],"correct":7},
		{"question":"Capital of France?","options":["Paris","Rome","Lima","Oslo"],"correct":0}
	]`

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req, "contents")
		assert.Contains(t, req, "generationConfig")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply(t, payload)))
	}))
	defer srv.Close()

	src := NewGemini(GeminiConfig{
		APIKey:     "test-key",
		Model:      "gemini-2.0-flash",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
	})

	qs, err := src.Generate(context.Background(), 2, "math", "Easy", nil)
	require.NoError(t, err)
	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)

	// malformed entries are filtered out
	require.Len(t, qs, 2)
	assert.Equal(t, "What is 2+2?", qs[0].Text)
	assert.Equal(t, 1, qs[0].Correct)
	assert.Equal(t, []string{"Paris", "Rome", "Lima", "Oslo"}, qs[1].Options)
}

func TestGemini_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	src := NewGemini(GeminiConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := src.Generate(context.Background(), 2, "math", "Easy", nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestGemini_EmptyQuestionArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(geminiReply(t, `[]`)))
	}))
	defer srv.Close()

	src := NewGemini(GeminiConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := src.Generate(context.Background(), 2, "math", "Easy", nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestGemini_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewGemini(GeminiConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := src.Generate(context.Background(), 2, "math", "Easy", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

type fakeOpener map[string][]byte

func (f fakeOpener) ReadFile(name string) ([]byte, error) {
	if data, ok := f[name]; ok {
		return data, nil
	}
	return nil, assert.AnError
}

func TestGemini_MissingFileIsSkipped(t *testing.T) {
	var parts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Contents []struct {
				Parts []json.RawMessage `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		parts = len(req.Contents[0].Parts)
		_, _ = w.Write([]byte(geminiReply(t, `[{"question":"q","options":["a","b","c","d"],"correct":0}]`)))
	}))
	defer srv.Close()

	src := NewGemini(GeminiConfig{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Files:      fakeOpener{"1-notes.pdf": []byte("%PDF-1.4")},
	})

	files := []File{
		{Name: "notes.pdf", URL: "/uploads/1-notes.pdf"},
		{Name: "gone.pdf", URL: "/uploads/1-gone.pdf"},
	}
	_, err := src.Generate(context.Background(), 1, "math", "Easy", files)
	require.NoError(t, err)

	// prompt + the one resolvable file
	assert.Equal(t, 2, parts)
}
