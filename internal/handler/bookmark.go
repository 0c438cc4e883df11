package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/calebnorth/stash/internal/auth"
	"github.com/calebnorth/stash/internal/config"
	"github.com/calebnorth/stash/internal/metadata"
	"github.com/calebnorth/stash/internal/model"
	"github.com/calebnorth/stash/internal/query"
	"github.com/calebnorth/stash/internal/store"
	"github.com/calebnorth/stash/internal/websocket"
)

// MetadataFetcher extracts page metadata for bookmark creation
// convenience. Failures are silently degraded to blank fields.
type MetadataFetcher interface {
	Extract(ctx context.Context, rawURL string) (*metadata.Metadata, error)
}

type BookmarkHandler struct {
	bookmarkStore *store.BookmarkStore
	fetcher       MetadataFetcher
	hub           *websocket.Hub
	limits        config.Limits
	logger        *slog.Logger
}

func NewBookmarkHandler(bs *store.BookmarkStore, fetcher MetadataFetcher, hub *websocket.Hub, limits config.Limits, logger *slog.Logger) *BookmarkHandler {
	return &BookmarkHandler{bookmarkStore: bs, fetcher: fetcher, hub: hub, limits: limits, logger: logger}
}

func (h *BookmarkHandler) broadcast(userID int64, action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(userID, websocket.NewMessage("bookmark", action, id))
	}
}

type bookmarkRequest struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	IsFavorite    bool     `json:"is_favorite"`
	FaviconURL    string   `json:"favicon_url"`
	FetchMetadata bool     `json:"fetch_metadata"`
}

// validate trims and bounds-checks the request in place. A non-empty
// return is the 400 message. Title defaulting to the URL happens after
// validation so the default reflects the trimmed URL.
func (h *BookmarkHandler) validate(req *bookmarkRequest) string {
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return "url is required"
	}
	if len(req.URL) > h.limits.MaxURLLen {
		return "url is too long"
	}
	if u, err := url.Parse(req.URL); err != nil || !u.IsAbs() || u.Host == "" {
		return "invalid URL"
	}

	req.Title = strings.TrimSpace(req.Title)
	if len(req.Title) > h.limits.MaxTitleLen {
		return "title is too long"
	}
	if len(req.Description) > h.limits.MaxDescriptionLen {
		return "description is too long"
	}

	tags, err := normalizeTags(req.Tags, h.limits)
	if err != nil {
		return err.Error()
	}
	req.Tags = tags
	return ""
}

// fillMetadata populates blank title/description/favicon fields from the
// target page. Best-effort: any extraction failure leaves the fields as
// they are and never blocks saving.
func (h *BookmarkHandler) fillMetadata(ctx context.Context, req *bookmarkRequest) {
	if h.fetcher == nil {
		return
	}
	meta, err := h.fetcher.Extract(ctx, req.URL)
	if err != nil {
		h.logger.Debug("metadata fetch", "url", req.URL, "error", err)
		return
	}
	if req.Title == "" {
		req.Title = meta.Title
	}
	if req.Description == "" {
		req.Description = meta.Description
	}
	if req.FaviconURL == "" {
		req.FaviconURL = meta.Favicon
	}
}

func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	bookmarks, err := h.bookmarkStore.List(userID, query.ParseFilter(r.URL.Query()))
	if err != nil {
		h.logger.Error("list bookmarks", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list bookmarks")
		return
	}
	if bookmarks == nil {
		bookmarks = []model.Bookmark{}
	}

	query.Order(bookmarks, query.ParseSort(r.URL.Query().Get("sort")))
	writeJSON(w, http.StatusOK, bookmarks)
}

func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if req.FetchMetadata {
		h.fillMetadata(r.Context(), &req)
	}
	if req.Title == "" {
		req.Title = req.URL
	}

	bookmark, err := h.bookmarkStore.Create(userID, req.URL, req.Title, req.Description, req.Tags, req.IsFavorite, req.FaviconURL)
	if err != nil {
		h.logger.Error("create bookmark", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create bookmark")
		return
	}

	h.broadcast(userID, "created", bookmark.ID)
	writeJSON(w, http.StatusCreated, bookmark)
}

func (h *BookmarkHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	bookmark, err := h.bookmarkStore.GetByID(userID, r.PathValue("id"))
	if err != nil {
		h.logger.Error("get bookmark", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get bookmark")
		return
	}
	if bookmark == nil {
		writeError(w, http.StatusNotFound, "bookmark not found")
		return
	}
	writeJSON(w, http.StatusOK, bookmark)
}

func (h *BookmarkHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Title == "" {
		req.Title = req.URL
	}

	bookmark, err := h.bookmarkStore.Update(userID, id, req.URL, req.Title, req.Description, req.Tags, req.IsFavorite, req.FaviconURL)
	if err != nil {
		h.logger.Error("update bookmark", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update bookmark")
		return
	}
	if bookmark == nil {
		writeError(w, http.StatusNotFound, "bookmark not found")
		return
	}

	h.broadcast(userID, "updated", id)
	writeJSON(w, http.StatusOK, bookmark)
}

func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	deleted, err := h.bookmarkStore.Delete(userID, id)
	if err != nil {
		h.logger.Error("delete bookmark", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete bookmark")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "bookmark not found")
		return
	}

	h.broadcast(userID, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookmarkHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	bookmark, err := h.bookmarkStore.ToggleFavorite(userID, id)
	if err != nil {
		h.logger.Error("toggle bookmark favorite", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle favorite")
		return
	}
	if bookmark == nil {
		writeError(w, http.StatusNotFound, "bookmark not found")
		return
	}

	h.broadcast(userID, "favorited", id)
	writeJSON(w, http.StatusOK, bookmark)
}
