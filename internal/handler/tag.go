package handler

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/calebnorth/stash/internal/auth"
	"github.com/calebnorth/stash/internal/store"
)

type TagHandler struct {
	noteStore     *store.NoteStore
	bookmarkStore *store.BookmarkStore
	logger        *slog.Logger
}

func NewTagHandler(ns *store.NoteStore, bs *store.BookmarkStore, logger *slog.Logger) *TagHandler {
	return &TagHandler{noteStore: ns, bookmarkStore: bs, logger: logger}
}

// List returns the caller's tag vocabulary: the union of tags across the
// caller's current records of the requested kind.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "all"
	}

	var tags []string
	switch kind {
	case "notes":
		t, err := h.noteStore.Tags(userID)
		if err != nil {
			h.logger.Error("note tags", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list tags")
			return
		}
		tags = t
	case "bookmarks":
		t, err := h.bookmarkStore.Tags(userID)
		if err != nil {
			h.logger.Error("bookmark tags", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list tags")
			return
		}
		tags = t
	case "all":
		noteTags, err := h.noteStore.Tags(userID)
		if err != nil {
			h.logger.Error("note tags", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list tags")
			return
		}
		bookmarkTags, err := h.bookmarkStore.Tags(userID)
		if err != nil {
			h.logger.Error("bookmark tags", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list tags")
			return
		}
		tags = union(noteTags, bookmarkTags)
	default:
		writeError(w, http.StatusBadRequest, "kind must be notes, bookmarks, or all")
		return
	}

	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, tags)
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, s := range append(a, b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
