package service

import (
	"context"

	"blog-backend/internal/domains/group/model"
)

// Service - group administration + lookup cho post domain
type Service interface {
	List(ctx context.Context) ([]*model.Group, error)
	GetBySlug(ctx context.Context, slug string) (*model.Group, error)

	// Resolve tìm group theo id hoặc slug (giá trị của field group trong post form)
	Resolve(ctx context.Context, ref string) (*model.Group, error)

	Create(ctx context.Context, req model.GroupRequest) (*model.Group, error)
	Update(ctx context.Context, slug string, req model.GroupRequest) (*model.Group, error)
	Delete(ctx context.Context, slug string) (*model.GroupDeleteResponse, error)
}
