package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"blog-backend/internal/domains/post/model"
	"blog-backend/internal/shared"
	"blog-backend/pkg/logger"
)

// Object keys trong bucket:
//
//	posts/<author_id>/<post_id>/original.<ext>
//	posts/<author_id>/<post_id>/thumb.jpg
func authorPrefix(authorID string) string {
	return fmt.Sprintf("posts/%s/", authorID)
}

func originalKey(post *model.Post, format string) string {
	ext := format
	if format == "jpeg" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s%s/original.%s", authorPrefix(post.AuthorID.String()), post.ID, ext)
}

func thumbnailKey(post *model.Post) string {
	return fmt.Sprintf("%s%s/thumb.jpg", authorPrefix(post.AuthorID.String()), post.ID)
}

// attachImage upload ảnh gốc và gắn key/url vào post; thumbnail cũ bị bỏ
func (s *postService) attachImage(ctx context.Context, post *model.Post, img *validImage) error {
	key := originalKey(post, img.format)
	url, err := s.media.Upload(ctx, key, img.data, "image/"+img.format)
	if err != nil {
		logger.Error("Upload post image failed", err)
		return fmt.Errorf("%w: %v", model.ErrStorage, err)
	}

	post.ImageKey = &key
	post.ImageURL = &url
	post.ThumbnailURL = nil
	return nil
}

// enqueueProcessImage - lỗi enqueue chỉ log; reconcile job sẽ xử lý lại sau
func (s *postService) enqueueProcessImage(ctx context.Context, post *model.Post) {
	if s.queue == nil || post.ImageKey == nil {
		return
	}

	payload, err := json.Marshal(shared.ProcessPostImagePayload{
		PostID:   post.ID.String(),
		ImageKey: *post.ImageKey,
	})
	if err != nil {
		logger.Error("Marshal ProcessPostImage payload failed", err)
		return
	}

	task := asynq.NewTask(shared.TypeProcessPostImage, payload)
	if _, err := s.queue.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
	); err != nil {
		logger.Error("Enqueue ProcessPostImage failed", err)
	}
}

// ProcessImage render thumbnail 300px cho ảnh hiện tại của post.
// Bỏ qua nếu post đã bị xóa hoặc ảnh đã được thay bằng ảnh khác.
func (s *postService) ProcessImage(ctx context.Context, postID, imageKey string) error {
	if s.media == nil {
		return fmt.Errorf("process image: %w", model.ErrStorage)
	}

	id, err := uuid.Parse(postID)
	if err != nil {
		return fmt.Errorf("invalid post id %q: %w", postID, err)
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			logger.Warn("ProcessImage: post no longer exists", map[string]interface{}{"post_id": postID})
			return nil
		}
		return fmt.Errorf("get post: %w", err)
	}
	if post.ImageKey == nil || *post.ImageKey != imageKey {
		logger.Warn("ProcessImage: image replaced, skipping", map[string]interface{}{"post_id": postID})
		return nil
	}

	original, err := s.media.Download(ctx, imageKey)
	if err != nil {
		return fmt.Errorf("download original: %w", err)
	}

	thumb, err := s.images.Thumbnail(original)
	if err != nil {
		return fmt.Errorf("render thumbnail: %w", err)
	}

	url, err := s.media.Upload(ctx, thumbnailKey(post), thumb, "image/jpeg")
	if err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}

	if err := s.repo.UpdateThumbnail(ctx, post.ID, url); err != nil {
		return fmt.Errorf("save thumbnail url: %w", err)
	}
	return nil
}

// DeleteAuthorMedia xóa toàn bộ ảnh của author (sau khi user bị xóa)
func (s *postService) DeleteAuthorMedia(ctx context.Context, authorID string) error {
	if s.media == nil {
		return nil
	}
	if _, err := uuid.Parse(authorID); err != nil {
		return fmt.Errorf("invalid author id %q: %w", authorID, err)
	}
	return s.media.DeleteByPrefix(ctx, authorPrefix(authorID))
}

// ReconcileThumbnails enqueue lại process_image cho posts thiếu thumbnail.
// Trả về số task đã enqueue.
func (s *postService) ReconcileThumbnails(ctx context.Context, limit int) (int, error) {
	if s.queue == nil || s.media == nil {
		return 0, nil
	}

	posts, err := s.repo.ListMissingThumbnails(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list missing thumbnails: %w", err)
	}

	for _, p := range posts {
		s.enqueueProcessImage(ctx, p)
	}
	return len(posts), nil
}
