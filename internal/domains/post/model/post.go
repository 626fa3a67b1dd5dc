package model

import (
	"time"

	"github.com/google/uuid"
)

// ShortTextLength - số ký tự (rune) hiển thị trong admin/log
const ShortTextLength = 15

// Post - bài viết của author.
//
// DATABASE MAPPING (posts table):
//   - id         UUID PRIMARY KEY
//   - text       TEXT NOT NULL
//   - pub_date   TIMESTAMPTZ NOT NULL (set một lần khi tạo)
//   - author_id  UUID NOT NULL -> users(id) ON DELETE CASCADE
//   - group_id   UUID NULL     -> groups(id) ON DELETE SET NULL
//   - image_key / image_url / thumbnail_url (optional media)
//
// Author và PubDate không bao giờ thay đổi sau khi tạo.
type Post struct {
	ID       uuid.UUID  `json:"id"`
	Text     string     `json:"text"`
	PubDate  time.Time  `json:"pub_date"`
	AuthorID uuid.UUID  `json:"-"`
	GroupID  *uuid.UUID `json:"-"`

	ImageKey     *string `json:"-"`
	ImageURL     *string `json:"image_url,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`

	// Joined fields (filled bởi repository)
	Author AuthorRef `json:"author"`
	Group  *GroupRef `json:"group"`
}

// AuthorRef - thông tin author hiển thị kèm post
type AuthorRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

// GroupRef - thông tin group hiển thị kèm post (nil nếu post không có group)
type GroupRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

// String trả về 15 ký tự đầu của text
func (p *Post) String() string {
	runes := []rune(p.Text)
	if len(runes) <= ShortTextLength {
		return p.Text
	}
	return string(runes[:ShortTextLength])
}

// IsAuthor - chỉ author mới được sửa post
func (p *Post) IsAuthor(userID uuid.UUID) bool {
	return p.AuthorID == userID
}

// ListFilter - điều kiện lọc listing (nil = không lọc)
type ListFilter struct {
	GroupID  *uuid.UUID
	AuthorID *uuid.UUID
}
