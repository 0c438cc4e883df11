package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calebnorth/stash/internal/model"
	"github.com/calebnorth/stash/internal/query"
)

type BookmarkStore struct {
	db *sql.DB
}

func NewBookmarkStore(db *sql.DB) *BookmarkStore {
	return &BookmarkStore{db: db}
}

func scanBookmark(scanner interface{ Scan(...any) error }) (*model.Bookmark, error) {
	var b model.Bookmark
	var tagsJSON string
	var favorite int

	err := scanner.Scan(
		&b.ID, &b.UserID, &b.URL, &b.Title, &b.Description, &tagsJSON,
		&favorite, &b.FaviconURL, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.IsFavorite = favorite != 0
	if err := json.Unmarshal([]byte(tagsJSON), &b.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return &b, nil
}

const bookmarkCols = `id, user_id, url, title, description, tags, is_favorite, favicon_url, created_at, updated_at`

func (s *BookmarkStore) Create(userID int64, url, title, description string, tags []string, favorite bool, faviconURL string) (*model.Bookmark, error) {
	tagsJSON, err := encodeTags(tags)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	_, err = s.db.Exec(
		`INSERT INTO bookmarks (id, user_id, url, title, description, tags, is_favorite, favicon_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, url, title, description, tagsJSON, boolToInt(favorite), faviconURL, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert bookmark: %w", err)
	}
	return s.GetByID(userID, id)
}

// GetByID returns the bookmark only if it belongs to userID.
func (s *BookmarkStore) GetByID(userID int64, id string) (*model.Bookmark, error) {
	row := s.db.QueryRow(`SELECT `+bookmarkCols+` FROM bookmarks WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBookmark(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return b, nil
}

// List returns userID's bookmarks matching f, ordered by updated_at descending.
func (s *BookmarkStore) List(userID int64, f query.Filter) ([]model.Bookmark, error) {
	where, args := f.Compose(userID)

	rows, err := s.db.Query(
		`SELECT `+bookmarkCols+` FROM bookmarks WHERE `+where+` ORDER BY updated_at DESC`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []model.Bookmark
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		if !f.MatchText(b.Title, b.Description, b.URL) {
			continue
		}
		bookmarks = append(bookmarks, *b)
	}
	return bookmarks, rows.Err()
}

func (s *BookmarkStore) Update(userID int64, id, url, title, description string, tags []string, favorite bool, faviconURL string) (*model.Bookmark, error) {
	tagsJSON, err := encodeTags(tags)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`UPDATE bookmarks SET url = ?, title = ?, description = ?, tags = ?, is_favorite = ?, favicon_url = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		url, title, description, tagsJSON, boolToInt(favorite), faviconURL, time.Now().UTC(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update bookmark: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetByID(userID, id)
}

// ToggleFavorite flips the favorite flag. Returns nil if the bookmark does
// not belong to userID.
func (s *BookmarkStore) ToggleFavorite(userID int64, id string) (*model.Bookmark, error) {
	result, err := s.db.Exec(
		`UPDATE bookmarks SET is_favorite = 1 - is_favorite, updated_at = ? WHERE id = ? AND user_id = ?`,
		time.Now().UTC(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}
	return s.GetByID(userID, id)
}

// Delete removes the bookmark if owned by userID. The boolean is false when
// no row matched (id, userID).
func (s *BookmarkStore) Delete(userID int64, id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM bookmarks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete bookmark: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Tags returns the union of tags across all of userID's bookmarks, sorted.
func (s *BookmarkStore) Tags(userID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT je.value FROM bookmarks, json_each(bookmarks.tags) AS je
		 WHERE bookmarks.user_id = ? ORDER BY je.value`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookmark tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
