// Package fs provides file-based display sinks.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/oser-cs/apiview"
)

// Ensure FileSink implements apiview.Sink at compile time.
var _ apiview.Sink = (*FileSink)(nil)

// FileSink implements apiview.Sink by replacing a file's content.
// Text is written to a temporary file in the same directory and renamed
// over the target, so readers see either the old or the new text.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink creates a new FileSink writing to path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Path returns the target file path.
func (s *FileSink) Path() string {
	return s.path
}

// SetText atomically replaces the file content with text.
func (s *FileSink) SetText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, s.path)
}
