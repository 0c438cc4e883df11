package model

import "time"

// Bookmark is a saved URL with best-effort page metadata.
type Bookmark struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	IsFavorite  bool      `json:"is_favorite"`
	FaviconURL  string    `json:"favicon_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (b Bookmark) SortTitle() string { return b.Title }
func (b Bookmark) Favorite() bool { return b.IsFavorite }
func (b Bookmark) Updated() time.Time { return b.UpdatedAt }

