package upload

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// mimeTypes maps the recognized image extensions to their mimetypes.
// Clients use the table for pre-flight validation hints; it is never
// authoritative on the server side.
var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"svg":  "image/svg+xml",
	"avif": "image/avif",
}

// Handler is the HTTP-facing shim of the upload pipeline. It creates
// one Session per request and maps the session's outcome to exactly
// one HTTP response.
type Handler struct {
	cfg    *Config
	policy *Policy
	store  Store
	log    *slog.Logger
}

// NewHandler builds a Handler bound to one immutable Config and Store.
func NewHandler(cfg *Config, store Store, log *slog.Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		policy: NewPolicy(cfg.FileTypes, cfg.MaxFileSize),
		store:  store,
		log:    log,
	}
}

// errorBody is the JSON error shape pad clients expect.
type errorBody struct {
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	StatusCode int    `json:"statusCode"`
}

// Upload handles POST /p/{padID}/pluginfw/ep_image_upload/upload.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	padID := chi.URLParam(r, "padID")
	if !validPadID(padID) {
		h.writeError(w, errMalformed("invalid pad id", nil))
		h.drain(r)
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		h.writeError(w, errMalformed("request is not multipart/form-data", err))
		h.drain(r)
		return
	}

	sess := NewSession(h.cfg, h.policy, h.store, padID, h.log)
	out := sess.Run(r.Context(), mr)

	// Consume whatever the session left behind (trailing parts, the
	// remainder of an aborted file) so the connection can be reused.
	h.drain(r)

	observeUpload(h.cfg.StorageType, out, sess.Bytes(), time.Since(start))

	if out.Err != nil {
		h.writeError(w, out.Err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"url": out.URL})
}

// Settings handles GET /pluginfw/ep_image_upload/settings. It exposes
// the sanitized client-facing subset of the configuration: limits and
// the mimetype table, never storage credentials.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"fileTypes":   h.cfg.FileTypes,
		"maxFileSize": h.cfg.MaxFileSize,
		"storageType": h.cfg.StorageType,
		"mimeTypes":   mimeTypes,
	})
}

// RemovePad handles DELETE /p/{padID}/pluginfw/ep_image_upload. It is
// the pad-removal hook: when a pad is deleted, its uploads go with it.
func (h *Handler) RemovePad(w http.ResponseWriter, r *http.Request) {
	padID := chi.URLParam(r, "padID")
	if !validPadID(padID) {
		h.writeError(w, errMalformed("invalid pad id", nil))
		return
	}
	if err := h.store.RemovePad(r.Context(), padID); err != nil {
		h.log.Error("pad cleanup failed", "pad", padID, "error", err)
		h.writeError(w, errStorage(err))
		return
	}
	h.log.Info("removed pad uploads", "pad", padID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, e *Error) {
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{
		Message:    e.Message,
		Type:       string(e.Kind),
		StatusCode: status,
	})
}

// drain discards the unread remainder of the request body. Leaving
// bytes unread would poison the keep-alive connection.
func (h *Handler) drain(r *http.Request) {
	if _, err := io.Copy(io.Discard, r.Body); err != nil {
		h.log.Debug("draining request body failed", "error", err)
	}
}

// validPadID rejects pad ids that could escape the pad's storage
// namespace. The unique object id already defuses hostile filenames;
// this closes the same hole for the path parameter.
func validPadID(padID string) bool {
	if padID == "" || padID == "." || padID == ".." {
		return false
	}
	return !strings.ContainsAny(padID, "/\\")
}
