package model

import "time"

// Note is a Markdown text note owned by a single user.
type Note struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"is_favorite"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (n Note) SortTitle() string { return n.Title }
func (n Note) Favorite() bool { return n.IsFavorite }
func (n Note) Updated() time.Time { return n.UpdatedAt }
