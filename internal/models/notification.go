package models

import (
	"time"
)

// Notification is an append-only audit record. Writes are fire-and-forget:
// a failed insert is logged and dropped, never surfaced to the caller.
type Notification struct {
	ID     string     `json:"id" gorm:"primaryKey"` // uuid
	UserID string     `json:"user_id" gorm:"index"` // free-form truck/driver id
	Type   string     `json:"type"`
	Title  string     `json:"title"`
	Body   string     `json:"body"`
	Data   string     `json:"data"` // JSON payload
	SentAt time.Time  `json:"sent_at"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}
