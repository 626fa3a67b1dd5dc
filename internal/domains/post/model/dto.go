package model

import (
	"github.com/google/uuid"

	groupModel "blog-backend/internal/domains/group/model"
	"blog-backend/internal/shared/pagination"
)

// ========================================
// VIEW CONTEXTS
// ========================================

// IndexContext - GET /
type IndexContext struct {
	Posts []*Post         `json:"posts"`
	Page  pagination.Page `json:"page"`
}

// GroupContext - GET /group/:slug/
type GroupContext struct {
	Group *groupModel.Group `json:"group"`
	Posts []*Post           `json:"posts"`
	Page  pagination.Page   `json:"page"`
}

// ProfileAuthor - metadata của author trên profile page
type ProfileAuthor struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	PostsCount int       `json:"posts_count"`
}

// ProfileContext - GET /profile/:username/
type ProfileContext struct {
	Author ProfileAuthor   `json:"author"`
	Posts  []*Post         `json:"posts"`
	Page   pagination.Page `json:"page"`
}

// DetailContext - GET /posts/:post_id/
type DetailContext struct {
	Post             *Post `json:"post"`
	AuthorPostsCount int   `json:"author_posts_count"`
}

// GroupChoice - option cho select group trong form
type GroupChoice struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

// FormContext - GET/POST /create/ và /posts/:post_id/edit/
type FormContext struct {
	Form   PostForm      `json:"form"`
	Errors FormErrors    `json:"errors"`
	Groups []GroupChoice `json:"groups"`
	IsEdit bool          `json:"is_edit"`
	PostID *uuid.UUID    `json:"post_id,omitempty"`
}

// ExportRow - một dòng trong admin export
type ExportRow struct {
	ID        string
	ShortText string
	Author    string
	GroupSlug string
	PubDate   string
}
