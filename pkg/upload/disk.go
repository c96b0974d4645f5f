package upload

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DiskStore persists uploads on the local filesystem under a base
// folder, one subdirectory per pad. It reports no access URL; the
// session derives one from the configured base URL.
type DiskStore struct {
	base string
	log  *slog.Logger
}

// NewDiskStore creates a DiskStore rooted at base, creating the
// directory if needed.
func NewDiskStore(base string, log *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{base: base, log: log}, nil
}

// Put streams r to <base>/<key>. Any error while copying deletes the
// partially written file before it is reported, so an aborted upload
// never leaves an orphan on disk.
func (s *DiskStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		s.removePartial(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		s.removePartial(path)
		return "", err
	}

	// Access URL is computed by the caller from its base URL.
	return "", nil
}

// Remove deletes the object named by key. A missing file is not an
// error.
func (s *DiskStore) Remove(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemovePad recursively deletes the pad's upload directory. Called by
// the pad-removal hook when a pad is deleted.
func (s *DiskStore) RemovePad(ctx context.Context, padID string) error {
	return os.RemoveAll(filepath.Join(s.base, padID))
}

func (s *DiskStore) path(key string) string {
	return filepath.Join(s.base, filepath.FromSlash(key))
}

// removePartial is best-effort: a failed cleanup is logged, never
// escalated over the error that triggered it.
func (s *DiskStore) removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove partial file", "path", path, "error", err)
	}
}
