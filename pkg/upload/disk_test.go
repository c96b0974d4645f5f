package upload_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/padstack/padimg/pkg/upload"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDiskStore(t *testing.T) (*upload.DiskStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := upload.NewDiskStore(dir, testLogger())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return s, dir
}

// padFiles lists the regular files under dir/padID.
func padFiles(t *testing.T, dir, padID string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, padID))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

func TestDiskStore_PutWritesFile(t *testing.T) {
	s, dir := newDiskStore(t)

	url, err := s.Put(context.Background(), "pad1/abc.png", "image/png", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "" {
		t.Fatalf("url = %q, want empty (caller derives the URL)", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "pad1", "abc.png"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("stored %q, want %q", data, "hello")
	}
}

func TestDiskStore_PutRemovesPartialOnReadError(t *testing.T) {
	s, dir := newDiskStore(t)

	r := io.MultiReader(
		strings.NewReader(strings.Repeat("a", 100)),
		&erroringReader{err: errors.New("stream died")},
	)
	if _, err := s.Put(context.Background(), "pad1/abc.png", "image/png", r); err == nil {
		t.Fatal("Put succeeded, want error")
	}

	if files := padFiles(t, dir, "pad1"); len(files) != 0 {
		t.Fatalf("partial files left behind: %v", files)
	}
}

func TestDiskStore_RemoveMissingIsNotAnError(t *testing.T) {
	s, _ := newDiskStore(t)
	if err := s.Remove(context.Background(), "pad1/missing.png"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestDiskStore_RemovePadDeletesDirectory(t *testing.T) {
	s, dir := newDiskStore(t)

	for _, key := range []string{"pad1/a.png", "pad1/b.png", "pad2/c.png"} {
		if _, err := s.Put(context.Background(), key, "image/png", strings.NewReader("x")); err != nil {
			t.Fatalf("Put(%q): %v", key, err)
		}
	}

	if err := s.RemovePad(context.Background(), "pad1"); err != nil {
		t.Fatalf("RemovePad: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "pad1")); !os.IsNotExist(err) {
		t.Fatalf("pad1 directory still exists (stat err = %v)", err)
	}
	if files := padFiles(t, dir, "pad2"); len(files) != 1 {
		t.Fatalf("pad2 files = %v, want untouched single file", files)
	}
}

type erroringReader struct{ err error }

func (r *erroringReader) Read([]byte) (int, error) { return 0, r.err }
