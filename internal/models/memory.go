package models

import "time"

// MemoryRecord is a stored fact owned by the hosted memory service.
// The assistant only ever holds transient copies returned from queries.
type MemoryRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
