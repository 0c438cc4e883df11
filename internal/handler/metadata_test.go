package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calebnorth/stash/internal/metadata"
)

func TestMetadataGetRequiresURL(t *testing.T) {
	h := NewMetadataHandler(&stubFetcher{}, slog.Default())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest("GET", "/metadata", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMetadataGetFetchFailure(t *testing.T) {
	h := NewMetadataHandler(&stubFetcher{}, slog.Default())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest("GET", "/metadata?url=https://down.example.com", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestMetadataGetSuccess(t *testing.T) {
	fetcher := &stubFetcher{meta: &metadata.Metadata{
		Title:       "Example",
		Description: "desc",
		Favicon:     "https://example.com/favicon.ico",
	}}
	h := NewMetadataHandler(fetcher, slog.Default())

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest("GET", "/metadata?url=https://example.com", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var meta metadata.Metadata
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.Title != "Example" || meta.Favicon != "https://example.com/favicon.ico" {
		t.Errorf("meta = %+v", meta)
	}
}
