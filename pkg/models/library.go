package models

import "time"

// LibraryEntry places one catalog title on one of a user's lists.
type LibraryEntry struct {
	UserID    string    `json:"user_id"`
	MangaID   string    `json:"manga_id"`
	List      string    `json:"list"`
	UpdatedAt time.Time `json:"updated_at"`
}
