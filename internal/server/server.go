package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/calebnorth/stash/internal/backup"
	"github.com/calebnorth/stash/internal/config"
	"github.com/calebnorth/stash/internal/handler"
	"github.com/calebnorth/stash/internal/metadata"
	"github.com/calebnorth/stash/internal/middleware"
	"github.com/calebnorth/stash/internal/store"
	ws "github.com/calebnorth/stash/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	noteH         *handler.NoteHandler
	bookmarkH     *handler.BookmarkHandler
	tagH          *handler.TagHandler
	metadataH     *handler.MetadataHandler
	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	noteStore := store.NewNoteStore(db)
	bookmarkStore := store.NewBookmarkStore(db)

	extractor := metadata.NewExtractor(cfg.MetadataTimeout())
	backupMgr := backup.NewManager(cfg.Backup, cfg.DBPath, db, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		noteH:         handler.NewNoteHandler(noteStore, hub, cfg.Limits, logger.With("component", "note")),
		bookmarkH:     handler.NewBookmarkHandler(bookmarkStore, extractor, hub, cfg.Limits, logger.With("component", "bookmark")),
		tagH:          handler.NewTagHandler(noteStore, bookmarkStore, logger.With("component", "tag")),
		metadataH:     handler.NewMetadataHandler(extractor, logger.With("component", "metadata")),
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes behind RequireAuth
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /me", s.authH.Me)

	// Note routes
	mux.HandleFunc("GET /notes", s.noteH.List)
	mux.HandleFunc("POST /notes", s.noteH.Create)
	mux.HandleFunc("GET /notes/{id}", s.noteH.Get)
	mux.HandleFunc("PUT /notes/{id}", s.noteH.Update)
	mux.HandleFunc("DELETE /notes/{id}", s.noteH.Delete)
	mux.HandleFunc("POST /notes/{id}/favorite", s.noteH.ToggleFavorite)
	mux.HandleFunc("GET /notes/{id}/html", s.noteH.HTML)

	// Bookmark routes
	mux.HandleFunc("GET /bookmarks", s.bookmarkH.List)
	mux.HandleFunc("POST /bookmarks", s.bookmarkH.Create)
	mux.HandleFunc("GET /bookmarks/{id}", s.bookmarkH.Get)
	mux.HandleFunc("PUT /bookmarks/{id}", s.bookmarkH.Update)
	mux.HandleFunc("DELETE /bookmarks/{id}", s.bookmarkH.Delete)
	mux.HandleFunc("POST /bookmarks/{id}/favorite", s.bookmarkH.ToggleFavorite)

	// Cross-resource routes
	mux.HandleFunc("GET /tags", s.tagH.List)
	mux.HandleFunc("GET /metadata", s.metadataH.Get)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
