package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	groupModel "blog-backend/internal/domains/group/model"
	"blog-backend/internal/domains/post/model"
	userModel "blog-backend/internal/domains/user/model"
	"blog-backend/internal/shared"
)

// Service - listing, detail, create/edit + media jobs của posts
type Service interface {
	// Views
	Index(ctx context.Context, page int) (*model.IndexContext, error)
	GroupPosts(ctx context.Context, slug string, page int) (*model.GroupContext, error)
	Profile(ctx context.Context, username string, page int) (*model.ProfileContext, error)
	Detail(ctx context.Context, postID string) (*model.DetailContext, error)

	// Forms
	NewForm(ctx context.Context) (*model.FormContext, error)
	EditForm(ctx context.Context, principal *shared.Principal, postID string) (*model.FormContext, error)
	BuildFormContext(ctx context.Context, form model.PostForm, errs model.FormErrors, postID *uuid.UUID) (*model.FormContext, error)

	// Create/Update trả về *model.ValidationError khi form không hợp lệ
	Create(ctx context.Context, principal *shared.Principal, form model.PostForm, image *model.ImageUpload) (*model.Post, error)
	Update(ctx context.Context, principal *shared.Principal, postID string, form model.PostForm, image *model.ImageUpload) (*model.Post, error)

	// Background jobs
	ProcessImage(ctx context.Context, postID, imageKey string) error
	DeleteAuthorMedia(ctx context.Context, authorID string) error
	ReconcileThumbnails(ctx context.Context, limit int) (int, error)

	// Admin
	Export(ctx context.Context, w io.Writer) error
}

// GroupReader - phần của group service mà post domain cần
type GroupReader interface {
	List(ctx context.Context) ([]*groupModel.Group, error)
	GetBySlug(ctx context.Context, slug string) (*groupModel.Group, error)
	Resolve(ctx context.Context, ref string) (*groupModel.Group, error)
}

// AuthorReader - phần của user service mà post domain cần
type AuthorReader interface {
	GetByUsername(ctx context.Context, username string) (*userModel.User, error)
}

// MediaStorage - object storage cho ảnh (MinIO)
type MediaStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
}
