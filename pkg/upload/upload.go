package upload

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTooLarge is returned by the limit reader when a file exceeds the
// configured maximum size. It fails the stream mid-transfer so an
// oversized upload never has to be consumed in full.
var ErrTooLarge = errors.New("upload: file too large")

// ErrNoFilePart is returned when a multipart body contains no file part.
var ErrNoFilePart = errors.New("upload: no file part in request")

// Kind classifies a terminal upload failure. The value doubles as the
// "type" field of the error body sent to pad clients.
type Kind string

const (
	KindUnsupportedType  Kind = "fileType"
	KindFileTooLarge     Kind = "fileSize"
	KindStorageFailure   Kind = "storage"
	KindMalformedRequest Kind = "malformed"
	KindTransport        Kind = "transport"
)

// Error is a terminal upload failure together with its HTTP mapping.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload: %s: %v", e.Message, e.Err)
	}
	return "upload: " + e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error { return e.Err }

func errUnsupportedType(filename string) *Error {
	return &Error{
		Kind:    KindUnsupportedType,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("file type of %q is not allowed", filename),
	}
}

func errTooLarge(max int64) *Error {
	return &Error{
		Kind:    KindFileTooLarge,
		Status:  http.StatusForbidden,
		Message: fmt.Sprintf("file exceeds the maximum size of %d bytes", max),
	}
}

func errStorage(err error) *Error {
	return &Error{
		Kind:    KindStorageFailure,
		Status:  http.StatusInternalServerError,
		Message: "storing the file failed",
		Err:     err,
	}
}

func errMalformed(msg string, err error) *Error {
	return &Error{
		Kind:    KindMalformedRequest,
		Status:  http.StatusBadRequest,
		Message: msg,
		Err:     err,
	}
}

func errTransport(err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Status:  http.StatusBadRequest,
		Message: "request stream ended unexpectedly",
		Err:     err,
	}
}

// Outcome is the single terminal result of an upload session. Err is
// nil exactly when the upload succeeded, in which case URL is the
// access URL of the stored object.
type Outcome struct {
	URL string
	Err *Error
}

// Config holds the upload constraints and descriptor settings for one
// deployment. It is resolved once from the process configuration and
// never mutated afterwards.
type Config struct {
	// FileTypes is the allowed extension list (without dots, any
	// case). Empty means any file whose declared mimetype starts
	// with "image/" is accepted.
	FileTypes []string

	// MaxFileSize is the per-file byte limit. Zero means unlimited.
	MaxFileSize int64

	// StorageType names the configured backend ("local" or "s3").
	// It is reported to clients, never used for dispatch; backend
	// selection happens when the Store is constructed.
	StorageType string

	// BaseURL is joined with the storage key to form the access URL
	// when the store itself does not report one (the local case).
	BaseURL string
}
