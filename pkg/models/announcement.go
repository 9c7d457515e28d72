package models

import (
	"time"

	"github.com/google/uuid"
)

// Announcement is a notice posted on a union's board.
type Announcement struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	UnionID   uuid.UUID `db:"union_id"   json:"union_id"`
	Title     string    `db:"title"      json:"title"`
	Content   string    `db:"content"    json:"content"`
	Author    string    `db:"author"     json:"author"`
	Pinned    bool      `db:"pinned"     json:"pinned"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
