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

// ProcessImageHandler render thumbnail cho ảnh của post
type ProcessImageHandler struct {
	postService postService.Service
}

func NewProcessImageHandler(postService postService.Service) *ProcessImageHandler {
	return &ProcessImageHandler{postService: postService}
}

func (h *ProcessImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ProcessPostImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ProcessPostImage payload")
		// Payload hỏng thì retry cũng vô ích
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Str("post_id", payload.PostID).
		Str("image_key", payload.ImageKey).
		Msg("Processing post image")

	if err := h.postService.ProcessImage(ctx, payload.PostID, payload.ImageKey); err != nil {
		log.Error().
			Err(err).
			Str("post_id", payload.PostID).
			Msg("Failed to process post image")
		return fmt.Errorf("process image: %w", err)
	}

	log.Info().
		Str("post_id", payload.PostID).
		Msg("Post thumbnail ready")
	return nil
}
