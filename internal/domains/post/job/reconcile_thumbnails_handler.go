package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	postService "blog-backend/internal/domains/post/service"
	"blog-backend/internal/shared"
)

const defaultReconcileLimit = 100

// ReconcileThumbnailsHandler - periodic job, enqueue lại posts thiếu thumbnail
type ReconcileThumbnailsHandler struct {
	postService postService.Service
}

func NewReconcileThumbnailsHandler(postService postService.Service) *ReconcileThumbnailsHandler {
	return &ReconcileThumbnailsHandler{postService: postService}
}

func (h *ReconcileThumbnailsHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ReconcileThumbnailsPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if payload.Limit <= 0 {
		payload.Limit = defaultReconcileLimit
	}

	n, err := h.postService.ReconcileThumbnails(ctx, payload.Limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to reconcile thumbnails")
		return fmt.Errorf("reconcile thumbnails: %w", err)
	}

	log.Info().Int("enqueued", n).Msg("Thumbnail reconcile finished")
	return nil
}
