package upload_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/padstack/padimg/pkg/upload"
)

func TestPolicy_AllowFileWithExtensionList(t *testing.T) {
	p := upload.NewPolicy([]string{"png", ".JPEG"}, 0)

	cases := []struct {
		filename    string
		contentType string
		want        bool
	}{
		{"photo.png", "image/png", true},
		{"photo.PNG", "image/png", true},
		{"photo.jpeg", "image/jpeg", true},
		{"photo.gif", "image/gif", false},
		{"photo", "image/png", false},
		{"photo.png.exe", "image/png", false},
	}

	for _, tc := range cases {
		if got := p.AllowFile(tc.filename, tc.contentType); got != tc.want {
			t.Errorf("AllowFile(%q, %q) = %v, want %v", tc.filename, tc.contentType, got, tc.want)
		}
	}
}

func TestPolicy_EmptyListFallsBackToImageMimetype(t *testing.T) {
	p := upload.NewPolicy(nil, 0)

	cases := []struct {
		contentType string
		want        bool
	}{
		{"image/png", true},
		{"Image/JPEG; charset=binary", true},
		{"text/plain", false},
		{"application/octet-stream", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := p.AllowFile("anything.bin", tc.contentType); got != tc.want {
			t.Errorf("AllowFile(_, %q) = %v, want %v", tc.contentType, got, tc.want)
		}
	}
}

func TestLimitReader_PassesThroughUnderLimit(t *testing.T) {
	p := upload.NewPolicy(nil, 10)
	lr := p.LimitReader(strings.NewReader("0123456789"))

	data, err := io.ReadAll(lr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "0123456789" {
		t.Fatalf("data = %q, want %q", data, "0123456789")
	}
	if lr.Exceeded() {
		t.Fatal("Exceeded() = true for a file exactly at the limit")
	}
	if lr.Count() != 10 {
		t.Fatalf("Count() = %d, want 10", lr.Count())
	}
}

func TestLimitReader_CutsOffMidStream(t *testing.T) {
	p := upload.NewPolicy(nil, 10)
	lr := p.LimitReader(strings.NewReader(strings.Repeat("a", 100)))

	var sink bytes.Buffer
	_, err := io.Copy(&sink, lr)
	if !errors.Is(err, upload.ErrTooLarge) {
		t.Fatalf("Copy error = %v, want ErrTooLarge", err)
	}
	if !lr.Exceeded() {
		t.Fatal("Exceeded() = false after limit violation")
	}
	// At most one byte past the limit may have been forwarded.
	if sink.Len() > 11 {
		t.Fatalf("forwarded %d bytes, want at most 11", sink.Len())
	}
}

func TestLimitReader_ZeroMeansUnlimited(t *testing.T) {
	p := upload.NewPolicy(nil, 0)
	lr := p.LimitReader(strings.NewReader(strings.Repeat("a", 1<<16)))

	n, err := io.Copy(io.Discard, lr)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != 1<<16 {
		t.Fatalf("copied %d bytes, want %d", n, 1<<16)
	}
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(b []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(b, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestLimitReader_RecordsSourceError(t *testing.T) {
	boom := errors.New("connection reset")
	p := upload.NewPolicy(nil, 100)
	lr := p.LimitReader(&failingReader{data: []byte("abc"), err: boom})

	_, err := io.ReadAll(lr)
	if !errors.Is(err, boom) {
		t.Fatalf("ReadAll error = %v, want %v", err, boom)
	}
	if lr.SourceErr() != boom {
		t.Fatalf("SourceErr() = %v, want %v", lr.SourceErr(), boom)
	}
	if lr.Exceeded() {
		t.Fatal("Exceeded() = true, want false")
	}
}
