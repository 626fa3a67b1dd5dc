package cache

import (
	"context"
	"time"
)

// Cache là key-value store dùng cho session state (revoked tokens, login attempts).
// Cho phép swap implementation (Redis, in-memory).
type Cache interface {
	// Get unmarshal JSON value vào dest.
	// Returns: (found bool, error)
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set lưu value (JSON) với TTL; ttl = 0 nghĩa là không hết hạn
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete xóa các keys
	Delete(ctx context.Context, keys ...string) error

	Exists(ctx context.Context, key string) (bool, error)
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Ping kiểm tra connection
	Ping(ctx context.Context) error
}
