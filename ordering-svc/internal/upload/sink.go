package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sink is where accepted image bytes end up. Paths are relative to the sink root.
type Sink interface {
	EnsureDir(dir string) error
	Create(path string) (io.WriteCloser, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
}

type DiskSink struct {
	Root string
}

func NewDiskSink(root string) *DiskSink {
	return &DiskSink{Root: root}
}

func (s *DiskSink) full(path string) string {
	return filepath.Join(s.Root, filepath.FromSlash(path))
}

// EnsureDir creates dir when missing and fails if it cannot be written to.
func (s *DiskSink) EnsureDir(dir string) error {
	full := s.full(dir)
	if err := os.MkdirAll(full, 0o755); err != nil {
		return fmt.Errorf("create upload directory %s: %w", full, err)
	}
	check, err := os.CreateTemp(full, ".writable-*")
	if err != nil {
		return fmt.Errorf("upload directory %s is not writable: %w", full, err)
	}
	check.Close()
	return os.Remove(check.Name())
}

func (s *DiskSink) Create(path string) (io.WriteCloser, error) {
	return os.OpenFile(s.full(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

func (s *DiskSink) Open(path string) (io.ReadCloser, error) {
	return os.Open(s.full(path))
}

func (s *DiskSink) Remove(path string) error {
	return os.Remove(s.full(path))
}
