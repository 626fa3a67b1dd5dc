package repository

import (
	"context"

	"github.com/google/uuid"

	"blog-backend/internal/domains/user/model"
)

// Repository - user persistence.
// Not found trả về model.ErrUserNotFound; trùng username/email trả về
// model.ErrUsernameTaken / model.ErrEmailTaken.
type Repository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Delete xóa user và (cascade) toàn bộ posts của user
	Delete(ctx context.Context, id uuid.UUID) error
}
