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

type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

func scanNote(scanner interface{ Scan(...any) error }) (*model.Note, error) {
	var n model.Note
	var tagsJSON string
	var favorite int

	err := scanner.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Content, &tagsJSON,
		&favorite, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.IsFavorite = favorite != 0
	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return &n, nil
}

const noteCols = `id, user_id, title, content, tags, is_favorite, created_at, updated_at`

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *NoteStore) Create(userID int64, title, content string, tags []string, favorite bool) (*model.Note, error) {
	tagsJSON, err := encodeTags(tags)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	_, err = s.db.Exec(
		`INSERT INTO notes (id, user_id, title, content, tags, is_favorite, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, title, content, tagsJSON, boolToInt(favorite), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return s.GetByID(userID, id)
}

// GetByID returns the note only if it belongs to userID.
func (s *NoteStore) GetByID(userID int64, id string) (*model.Note, error) {
	row := s.db.QueryRow(`SELECT `+noteCols+` FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// List returns userID's notes matching f, ordered by updated_at descending.
// The free-text constraint is applied here rather than in SQL so matching
// is Unicode case-insensitive.
func (s *NoteStore) List(userID int64, f query.Filter) ([]model.Note, error) {
	where, args := f.Compose(userID)

	rows, err := s.db.Query(
		`SELECT `+noteCols+` FROM notes WHERE `+where+` ORDER BY updated_at DESC`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if !f.MatchText(n.Title, n.Content) {
			continue
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (s *NoteStore) Update(userID int64, id, title, content string, tags []string, favorite bool) (*model.Note, error) {
	tagsJSON, err := encodeTags(tags)
	if err != nil {
		return nil, err
	}

	result, err := s.db.Exec(
		`UPDATE notes SET title = ?, content = ?, tags = ?, is_favorite = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		title, content, tagsJSON, boolToInt(favorite), time.Now().UTC(), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
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

// ToggleFavorite flips the favorite flag. Returns nil if the note does not
// belong to userID.
func (s *NoteStore) ToggleFavorite(userID int64, id string) (*model.Note, error) {
	result, err := s.db.Exec(
		`UPDATE notes SET is_favorite = 1 - is_favorite, updated_at = ? WHERE id = ? AND user_id = ?`,
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

// Delete removes the note if owned by userID. The boolean is false when no
// row matched (id, userID).
func (s *NoteStore) Delete(userID int64, id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Tags returns the union of tags across all of userID's notes, sorted.
func (s *NoteStore) Tags(userID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT je.value FROM notes, json_each(notes.tags) AS je
		 WHERE notes.user_id = ? ORDER BY je.value`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list note tags: %w", err)
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
