package model

import (
	"time"

	"github.com/google/uuid"
)

// Group là category mà post có thể thuộc về (optional).
//
// DATABASE MAPPING:
// ┌─────────────────────────────┐
// │         groups table        │
// ├─────────────────────────────┤
// │ id (UUID) - PRIMARY KEY     │
// │ title (VARCHAR 200)         │
// │ slug (VARCHAR 255) - UNIQUE │
// │ description (TEXT)          │
// │ created_at                  │
// └─────────────────────────────┘
//
// Slug là external reference ổn định (/group/<slug>/), không đổi sau khi tạo
// trừ khi admin sửa tường minh. Posts chỉ reference group (ON DELETE SET NULL).
type Group struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (g *Group) String() string {
	return g.Title
}
