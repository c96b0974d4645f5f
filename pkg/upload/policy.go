package upload

import (
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// Policy evaluates a candidate file against the configured upload
// constraints. It is a pure predicate: it never touches storage.
type Policy struct {
	allowed map[string]struct{} // lowercase extensions without dots
	maxSize int64               // 0 = unlimited
}

// NewPolicy builds a Policy from the allowed extension list and the
// per-file size limit in bytes.
func NewPolicy(fileTypes []string, maxSize int64) *Policy {
	p := &Policy{maxSize: maxSize}
	if len(fileTypes) > 0 {
		p.allowed = make(map[string]struct{}, len(fileTypes))
		for _, t := range fileTypes {
			ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
			if ext != "" {
				p.allowed[ext] = struct{}{}
			}
		}
	}
	return p
}

// AllowFile decides whether a file with the given name and declared
// mimetype may be uploaded at all. With a non-empty allow-list only
// the filename extension counts; with an empty list any declared
// image/* mimetype is accepted.
func (p *Policy) AllowFile(filename, contentType string) bool {
	if len(p.allowed) == 0 {
		mt, _, err := mime.ParseMediaType(contentType)
		return err == nil && strings.HasPrefix(mt, "image/")
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	_, ok := p.allowed[ext]
	return ok
}

// MaxSize returns the configured per-file byte limit, 0 if unlimited.
func (p *Policy) MaxSize() int64 { return p.maxSize }

// LimitReader wraps r so that reads fail with ErrTooLarge as soon as
// the cumulative byte count passes the configured maximum. The check
// runs per read, while data is still arriving, so an oversized upload
// is cut off mid-stream instead of after full buffering.
func (p *Policy) LimitReader(r io.Reader) *LimitReader {
	return &LimitReader{r: r, remaining: p.maxSize, unlimited: p.maxSize <= 0}
}

// LimitReader is a byte-counting reader with a hard ceiling.
type LimitReader struct {
	r         io.Reader
	remaining int64
	unlimited bool
	count     int64
	exceeded  bool
	err       error // first non-EOF error seen from the source
}

// Read forwards at most one byte past the ceiling, then fails every
// subsequent read with ErrTooLarge.
func (l *LimitReader) Read(b []byte) (int, error) {
	if l.exceeded {
		return 0, ErrTooLarge
	}
	if !l.unlimited && int64(len(b)) > l.remaining+1 {
		b = b[:l.remaining+1]
	}
	n, err := l.r.Read(b)
	l.count += int64(n)
	if !l.unlimited {
		l.remaining -= int64(n)
		if l.remaining < 0 {
			l.exceeded = true
			return n, ErrTooLarge
		}
	}
	if err != nil && err != io.EOF {
		l.err = err
	}
	return n, err
}

// Exceeded reports whether the size limit was hit.
func (l *LimitReader) Exceeded() bool { return l.exceeded }

// Count returns the number of bytes read so far.
func (l *LimitReader) Count() int64 { return l.count }

// SourceErr returns the first non-EOF error produced by the wrapped
// source, nil if the source never failed. It lets the session tell a
// dying request stream apart from a storage write failure.
func (l *LimitReader) SourceErr() error {
	if l.exceeded {
		return nil
	}
	return l.err
}
