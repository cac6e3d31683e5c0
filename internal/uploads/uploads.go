// Package uploads stores the reference documents a room can be created
// with. Files live on disk for the process lifetime and are served
// statically; this is byte storage only, nothing here knows about rooms.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MaxFilesPerUpload caps a single upload request.
const MaxFilesPerUpload = 3

type Store struct {
	dir string
	log *zap.Logger
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes one uploaded file under a timestamped, sanitized name and
// returns the stored filename.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	stored := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitize(name))
	f, err := os.Create(filepath.Join(s.dir, stored))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return stored, nil
}

// ReadFile returns the bytes of a stored file. The name is reduced to its
// base so callers cannot escape the upload directory.
func (s *Store) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
}

// RemoveAll deletes every stored file. Individual failures are collected
// so one stuck file does not hide the rest.
func (s *Store) RemoveAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read upload dir: %w", err)
	}
	var failed []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			s.log.Error("failed to delete upload", zap.String("file", e.Name()), zap.Error(err))
			failed = append(failed, e.Name())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("could not delete %d file(s)", len(failed))
	}
	return nil
}

func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.Join(strings.Fields(name), "_")
}
