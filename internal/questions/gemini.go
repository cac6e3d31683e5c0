package questions

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brainduel/quiz-backend/internal/game"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// FileOpener resolves a stored upload by its on-disk name. Implemented by
// the uploads store.
type FileOpener interface {
	ReadFile(name string) ([]byte, error)
}

// GeminiConfig configures the Gemini generateContent endpoint and HTTP
// behavior.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Files      FileOpener
	Logger     *zap.Logger
}

type geminiSource struct {
	cfg GeminiConfig
}

// NewGemini builds a question source backed by the Gemini REST API.
func NewGemini(cfg GeminiConfig) Source {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &geminiSource{cfg: cfg}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenConfig struct {
	Temperature      float64         `json:"temperature"`
	ResponseMimeType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// questionSchema constrains the model output to the wire shape we parse.
var questionSchema = json.RawMessage(`{
	"type": "ARRAY",
	"items": {
		"type": "OBJECT",
		"properties": {
			"question": {"type": "STRING"},
			"options": {"type": "ARRAY", "items": {"type": "STRING"}},
			"correct": {"type": "INTEGER"}
		},
		"required": ["question", "options", "correct"]
	}
}`)

func (g *geminiSource) Generate(ctx context.Context, count int, topic, difficulty string, files []File) ([]game.Question, error) {
	prompt := fmt.Sprintf(`Generate %d multiple-choice questions based on the attached files and on the topic %q.
Difficulty level: %q.
Each question must have 4 options and a "correct" field holding the 0-based index of the right answer.
Respond ONLY with the JSON array, no extra text.`, count, topic, difficulty)

	parts := []geminiPart{{Text: prompt}}
	parts = append(parts, g.fileParts(files)...)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
		GenerationConfig: geminiGenConfig{
			Temperature:      0.7,
			ResponseMimeType: "application/json",
			ResponseSchema:   questionSchema,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(g.cfg.BaseURL, "/"), g.cfg.Model, g.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, raw)
	}

	var gr geminiResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, ErrNoQuestions
	}

	return parseQuestions(gr.Candidates[0].Content.Parts[0].Text)
}

// fileParts inlines the stored reference documents as base64 payloads.
// A file that cannot be read is skipped with a warning, matching the
// best-effort attachment behavior of the upload flow.
func (g *geminiSource) fileParts(files []File) []geminiPart {
	if g.cfg.Files == nil {
		return nil
	}
	var parts []geminiPart
	for _, f := range files {
		name := storedName(f)
		data, err := g.cfg.Files.ReadFile(name)
		if err != nil {
			g.cfg.Logger.Warn("reference file not found, skipping",
				zap.String("file", name), zap.Error(err))
			continue
		}
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{
			MimeType: mimeTypeFor(name),
			Data:     base64.StdEncoding.EncodeToString(data),
		}})
	}
	return parts
}

// storedName extracts the on-disk filename from an upload URL.
func storedName(f File) string {
	if f.URL != "" {
		return path.Base(f.URL)
	}
	return f.Name
}

func mimeTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".txt":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".md":
		return "text/markdown"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

func parseQuestions(text string) ([]game.Question, error) {
	var qs []game.Question
	if err := json.Unmarshal([]byte(text), &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	valid := qs[:0]
	for _, q := range qs {
		if q.Text == "" || len(q.Options) != 4 || q.Correct < 0 || q.Correct >= len(q.Options) {
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, ErrNoQuestions
	}
	return valid, nil
}
