package live

import "time"

// Event is the envelope written to subscribers, one JSON object per message.
type Event struct {
	Type    string    `json:"type"` // "view", "library.update", "library.delete", "session.closed"
	Session string    `json:"session,omitempty"`
	UserID  string    `json:"user_id,omitempty"`
	MangaID string    `json:"manga_id,omitempty"`
	List    string    `json:"list,omitempty"`
	Data    any       `json:"data,omitempty"`
	At      time.Time `json:"at"`
}

func SessionTopic(id string) string     { return "session:" + id }
func LibraryTopic(userID string) string { return "library:" + userID }
