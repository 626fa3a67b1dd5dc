package service

import (
	"context"

	"blog-backend/internal/domains/user/model"
	"blog-backend/internal/shared"
)

// Service - authentication + user lookup
type Service interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)

	// Logout revoke token (jti) tới khi token hết hạn
	Logout(ctx context.Context, principal *shared.Principal) error

	// Authenticate verify token và trả về principal; token bị revoke -> ErrInvalidToken
	Authenticate(ctx context.Context, token string) (*shared.Principal, error)

	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// EnsureAdmin tạo admin account nếu username chưa tồn tại
	EnsureAdmin(ctx context.Context, req model.SignupRequest) error

	// Delete xóa user + posts; ảnh của user được xóa bởi worker
	Delete(ctx context.Context, username string) error
}
