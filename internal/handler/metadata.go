package handler

import (
	"log/slog"
	"net/http"
)

type MetadataHandler struct {
	fetcher MetadataFetcher
	logger  *slog.Logger
}

func NewMetadataHandler(fetcher MetadataFetcher, logger *slog.Logger) *MetadataHandler {
	return &MetadataHandler{fetcher: fetcher, logger: logger}
}

// Get runs the extractor against the url query parameter.
func (h *MetadataHandler) Get(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	meta, err := h.fetcher.Extract(r.Context(), rawURL)
	if err != nil {
		h.logger.Warn("metadata fetch", "url", rawURL, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch metadata")
		return
	}

	writeJSON(w, http.StatusOK, meta)
}
