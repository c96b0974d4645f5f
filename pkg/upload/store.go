package upload

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store is the interface for upload storage backends. The backend is
// selected once, when the process configuration is resolved; callers
// never branch on the storage type again.
type Store interface {
	// Put streams r into the object named by key. It returns the
	// object's access URL when the backend knows one; an empty URL
	// means the caller derives it from its configured base URL.
	//
	// Put must not buffer the whole stream in memory, and a failed
	// Put must leave no partial object behind.
	Put(ctx context.Context, key, contentType string, r io.Reader) (url string, err error)

	// Remove deletes the object named by key. Removing an object
	// that does not exist is not an error.
	Remove(ctx context.Context, key string) error

	// RemovePad deletes every object stored for the given pad.
	RemovePad(ctx context.Context, padID string) error
}

// NewKey returns the storage key for one uploaded file: the pad id, a
// random 128-bit id, and the original file's extension. The original
// filename never reaches storage, so hostile names cannot steer the
// destination path, and independently generated ids make collisions
// across concurrent uploads a non-issue.
func NewKey(padID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return padID + "/" + uuid.NewString() + ext
}

// JoinURL appends key to base, normalizing base to end in a single
// slash. It builds the access URL for backends that store without
// reporting one.
func JoinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}
