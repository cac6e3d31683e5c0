// Package questions produces the multiple-choice question set a room is
// created with. The generator is an external, potentially slow dependency;
// callers must invoke it before a room becomes visible in the hub.
package questions

import (
	"context"
	"errors"
	"strings"

	"github.com/brainduel/quiz-backend/internal/game"
)

const (
	DefaultTopic      = "General knowledge"
	DefaultDifficulty = "Easy"

	// MaxFiles caps the reference documents attached to one room.
	MaxFiles = 3
)

var ErrTooManyFiles = errors.New("you can attach at most 3 PDF files")
var ErrInvalidFiles = errors.New("invalid files: only PDFs uploaded through the server are accepted")
var ErrNoQuestions = errors.New("could not generate questions for the game")

// File references an uploaded document by display name and serving URL.
type File struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Source generates an ordered question set for the given settings.
type Source interface {
	Generate(ctx context.Context, count int, topic, difficulty string, files []File) ([]game.Question, error)
}

// ValidateFiles enforces the attachment policy at room creation: at most
// MaxFiles, every file a PDF by name, and every URL either absolute or one
// served from the local uploads route. Bad files are rejected, not dropped.
func ValidateFiles(files []File) error {
	if len(files) > MaxFiles {
		return ErrTooManyFiles
	}
	for _, f := range files {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
			return ErrInvalidFiles
		}
		if !strings.HasPrefix(f.URL, "http") && !strings.HasPrefix(f.URL, "/uploads/") {
			return ErrInvalidFiles
		}
	}
	return nil
}
