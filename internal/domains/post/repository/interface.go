package repository

import (
	"context"

	"github.com/google/uuid"

	"blog-backend/internal/domains/post/model"
)

// Repository - post persistence.
// Mọi listing sắp xếp theo pub_date DESC, id DESC. Author/Group refs được join sẵn.
type Repository interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error)

	// Update chỉ ghi các field mutable: text, group_id, image_key, image_url, thumbnail_url
	Update(ctx context.Context, p *model.Post) error
	UpdateThumbnail(ctx context.Context, id uuid.UUID, thumbnailURL string) error

	Count(ctx context.Context, filter model.ListFilter) (int, error)
	List(ctx context.Context, filter model.ListFilter, offset, limit int) ([]*model.Post, error)

	// ListAll - toàn bộ posts (admin export)
	ListAll(ctx context.Context) ([]*model.Post, error)

	// ListMissingThumbnails - posts có image_key nhưng chưa có thumbnail
	ListMissingThumbnails(ctx context.Context, limit int) ([]*model.Post, error)
}
