package repository

import (
	"context"

	"github.com/google/uuid"

	"blog-backend/internal/domains/group/model"
)

// Repository - group persistence.
// Not found trả về model.ErrGroupNotFound, trùng slug trả về model.ErrSlugTaken.
type Repository interface {
	Create(ctx context.Context, g *model.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error)
	GetBySlug(ctx context.Context, slug string) (*model.Group, error)
	List(ctx context.Context) ([]*model.Group, error)
	Update(ctx context.Context, g *model.Group) error

	// Delete xóa group; posts của group giữ nguyên với group_id = NULL.
	// Trả về số posts đã bị detach.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}
