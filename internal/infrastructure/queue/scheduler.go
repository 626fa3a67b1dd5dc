package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"blog-backend/internal/config"
	"blog-backend/internal/shared"
	"blog-backend/pkg/logger"
)

// Scheduler đăng ký các periodic jobs của worker
type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisCfg config.RedisConfig, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		RedisOpt(redisCfg),
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerReconcileThumbnailsJob()
}

// ================================================
// Reconcile post thumbnails
// ================================================
// Posts có ảnh nhưng chưa có thumbnail (task process_image hết retry
// hoặc worker down lúc upload) sẽ được enqueue lại.
func (s *Scheduler) registerReconcileThumbnailsJob() error {
	payload, err := json.Marshal(shared.ReconcileThumbnailsPayload{
		Limit: s.jobConfig.ReconcileBatchLimit,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeReconcilePostThumbnails, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.ReconcileCron,
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ReconcileThumbnails job", err)
		return err
	}

	logger.Info("✓ Registered ReconcileThumbnails", map[string]interface{}{
		"cron": s.jobConfig.ReconcileCron,
	})
	return nil
}

// Start chạy scheduler trong background
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
