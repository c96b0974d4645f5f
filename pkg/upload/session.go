package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"sync"
)

// Session drives one upload request from multipart parsing to a
// single terminal Outcome. Exactly one file part is reported per
// request; whatever follows it in the body is left for the handler to
// drain.
//
// The terminal outcome is single-assignment. Stream events can keep
// firing after the result has been decided (a limit abort fails the
// in-flight copy, which then surfaces its own error), so whichever
// event resolves first wins and every later resolve is a no-op.
type Session struct {
	policy *Policy
	store  Store
	padID  string
	cfg    *Config
	log    *slog.Logger

	once    sync.Once
	outcome Outcome
	bytes   int64
}

// NewSession creates a session for one request against the given pad.
func NewSession(cfg *Config, policy *Policy, store Store, padID string, log *slog.Logger) *Session {
	return &Session{
		policy: policy,
		store:  store,
		padID:  padID,
		cfg:    cfg,
		log:    log,
	}
}

// resolve records the terminal outcome. First caller wins.
func (s *Session) resolve(out Outcome) {
	s.once.Do(func() { s.outcome = out })
}

// Bytes returns how many payload bytes the session consumed.
func (s *Session) Bytes() int64 { return s.bytes }

// Run consumes the multipart stream until the first file part has
// been fully handled and returns the session's single outcome.
func (s *Session) Run(ctx context.Context, mr *multipart.Reader) Outcome {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			s.resolve(Outcome{Err: errMalformed("no file in request body", ErrNoFilePart)})
			break
		}
		if err != nil {
			s.resolve(Outcome{Err: errMalformed("malformed multipart body", err)})
			break
		}
		if part.FileName() == "" {
			// Plain form field, not a file. Skip it.
			continue
		}

		s.streamPart(ctx, part)
		part.Close()
		break
	}
	return s.outcome
}

// streamPart pipes one file part into the store and resolves the
// session. The extension check runs before a single byte is forwarded
// to storage; the size check runs per chunk while the copy is in
// flight.
func (s *Session) streamPart(ctx context.Context, part *multipart.Part) {
	filename := part.FileName()
	contentType := part.Header.Get("Content-Type")

	if !s.policy.AllowFile(filename, contentType) {
		s.log.Info("rejected upload", "pad", s.padID, "filename", filename, "reason", "file type")
		s.resolve(Outcome{Err: errUnsupportedType(filename)})
		return
	}

	key := NewKey(s.padID, filename)
	lr := s.policy.LimitReader(part)

	url, err := s.store.Put(ctx, key, contentType, lr)
	s.bytes = lr.Count()
	if err != nil {
		switch {
		case lr.Exceeded():
			s.log.Info("rejected upload", "pad", s.padID, "filename", filename,
				"reason", "file size", "bytes", lr.Count())
			s.resolve(Outcome{Err: errTooLarge(s.policy.MaxSize())})
		case lr.SourceErr() != nil:
			s.log.Warn("upload stream failed", "pad", s.padID, "error", lr.SourceErr())
			s.resolve(Outcome{Err: errTransport(lr.SourceErr())})
		default:
			s.log.Error("storage write failed", "pad", s.padID, "key", key, "error", err)
			s.resolve(Outcome{Err: errStorage(err)})
		}
		return
	}

	if url == "" {
		url = JoinURL(s.cfg.BaseURL, key)
	}
	s.log.Info("stored upload", "pad", s.padID, "key", key, "bytes", lr.Count())
	s.resolve(Outcome{URL: url})
}
