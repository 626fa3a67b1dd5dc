package model

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxTitleLength = 200
	MaxSlugLength  = 255
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// GroupRequest - admin tạo/sửa group.
// Slug trống sẽ được generate từ Title.
type GroupRequest struct {
	Title       string `json:"title" form:"title"`
	Slug        string `json:"slug" form:"slug"`
	Description string `json:"description" form:"description"`
}

// Normalize trim whitespace trước khi validate
func (r *GroupRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Description = strings.TrimSpace(r.Description)
}

func (r GroupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, MaxTitleLength),
		),
		validation.Field(&r.Slug,
			validation.Required.Error("slug is required"),
			validation.Length(1, MaxSlugLength),
			validation.Match(slugPattern).Error("slug may contain only letters, numbers, underscores or hyphens"),
		),
	)
}

// GroupDeleteResponse báo số posts đã được detach (group = null)
type GroupDeleteResponse struct {
	Slug          string `json:"slug"`
	DetachedPosts int64  `json:"detached_posts"`
}
