package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebnorth/stash/internal/auth"
	"github.com/calebnorth/stash/internal/config"
	"github.com/calebnorth/stash/internal/markdown"
	"github.com/calebnorth/stash/internal/model"
	"github.com/calebnorth/stash/internal/query"
	"github.com/calebnorth/stash/internal/store"
	"github.com/calebnorth/stash/internal/websocket"
)

type NoteHandler struct {
	noteStore *store.NoteStore
	hub       *websocket.Hub
	limits    config.Limits
	logger    *slog.Logger
}

func NewNoteHandler(ns *store.NoteStore, hub *websocket.Hub, limits config.Limits, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{noteStore: ns, hub: hub, limits: limits, logger: logger}
}

func (h *NoteHandler) broadcast(userID int64, action, id string) {
	if h.hub != nil {
		h.hub.Broadcast(userID, websocket.NewMessage("note", action, id))
	}
}

type noteRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	IsFavorite bool     `json:"is_favorite"`
}

// validate trims and bounds-checks the request in place. A non-empty
// return is the 400 message.
func (h *NoteHandler) validate(req *noteRequest) string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if len(req.Title) > h.limits.MaxTitleLen {
		return "title is too long"
	}
	if strings.TrimSpace(req.Content) == "" {
		return "content is required"
	}
	if len(req.Content) > h.limits.MaxContentLen {
		return "content is too long"
	}
	tags, err := normalizeTags(req.Tags, h.limits)
	if err != nil {
		return err.Error()
	}
	req.Tags = tags
	return ""
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	notes, err := h.noteStore.List(userID, query.ParseFilter(r.URL.Query()))
	if err != nil {
		h.logger.Error("list notes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notes")
		return
	}
	if notes == nil {
		notes = []model.Note{}
	}

	query.Order(notes, query.ParseSort(r.URL.Query().Get("sort")))
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	note, err := h.noteStore.Create(userID, req.Title, req.Content, req.Tags, req.IsFavorite)
	if err != nil {
		h.logger.Error("create note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create note")
		return
	}

	h.broadcast(userID, "created", note.ID)
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	note, err := h.noteStore.GetByID(userID, r.PathValue("id"))
	if err != nil {
		h.logger.Error("get note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get note")
		return
	}
	if note == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := h.validate(&req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	note, err := h.noteStore.Update(userID, id, req.Title, req.Content, req.Tags, req.IsFavorite)
	if err != nil {
		h.logger.Error("update note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update note")
		return
	}
	if note == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	h.broadcast(userID, "updated", id)
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	deleted, err := h.noteStore.Delete(userID, id)
	if err != nil {
		h.logger.Error("delete note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete note")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	h.broadcast(userID, "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *NoteHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	note, err := h.noteStore.ToggleFavorite(userID, id)
	if err != nil {
		h.logger.Error("toggle note favorite", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle favorite")
		return
	}
	if note == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	h.broadcast(userID, "favorited", id)
	writeJSON(w, http.StatusOK, note)
}

// HTML renders the note's Markdown content.
func (h *NoteHandler) HTML(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	note, err := h.noteStore.GetByID(userID, r.PathValue("id"))
	if err != nil {
		h.logger.Error("get note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get note")
		return
	}
	if note == nil {
		writeError(w, http.StatusNotFound, "note not found")
		return
	}

	rendered, err := markdown.Render(note.Content)
	if err != nil {
		h.logger.Error("render note", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render note")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(rendered))
}
