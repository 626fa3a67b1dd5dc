package queue

import (
	"context"

	"github.com/hibiken/asynq"

	"blog-backend/internal/config"
)

// Enqueuer - phần của *asynq.Client mà services cần (mock được trong tests)
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RedisOpt build asynq connection option từ Redis config
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Host,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewClient tạo asynq client. Kết nối Redis được mở lazily khi enqueue.
func NewClient(cfg config.RedisConfig) *asynq.Client {
	return asynq.NewClient(RedisOpt(cfg))
}
