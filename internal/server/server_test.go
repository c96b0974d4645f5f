package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/padstack/padimg/internal/config"
	"github.com/padstack/padimg/pkg/upload"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := upload.NewDiskStore(t.TempDir(), log)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	cfg := config.Default()
	cfg.Upload.Storage.BaseFolder = t.TempDir()
	cfg.Upload.Storage.BaseURL = "http://x/files"
	return newRouter(cfg, store, log)
}

func TestRouter_Endpoints(t *testing.T) {
	r := testRouter(t)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/pluginfw/ep_image_upload/settings", http.StatusOK},
		{http.MethodGet, "/p/pad1/pluginfw/ep_image_upload/upload", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/p/pad1/pluginfw/ep_image_upload", http.StatusNoContent},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s %s: status = %d, want %d", tc.method, tc.path, rec.Code, tc.want)
		}
	}
}

func TestRouter_UploadRejectsNonMultipart(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/p/pad1/pluginfw/ep_image_upload/upload", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
