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

// DeleteImagesHandler xóa toàn bộ ảnh của author sau khi user bị xóa
type DeleteImagesHandler struct {
	postService postService.Service
}

func NewDeleteImagesHandler(postService postService.Service) *DeleteImagesHandler {
	return &DeleteImagesHandler{postService: postService}
}

func (h *DeleteImagesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.DeletePostImagesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal DeletePostImages payload")
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Str("author_id", payload.AuthorID).
		Msg("Deleting author images")

	if err := h.postService.DeleteAuthorMedia(ctx, payload.AuthorID); err != nil {
		log.Error().
			Err(err).
			Str("author_id", payload.AuthorID).
			Msg("Failed to delete author images")
		return fmt.Errorf("delete images: %w", err)
	}

	log.Info().
		Str("author_id", payload.AuthorID).
		Msg("Author images deleted successfully")
	return nil
}
