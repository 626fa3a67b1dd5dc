package main

import (
	"github.com/hibiken/asynq"

	postJob "blog-backend/internal/domains/post/job"
	"blog-backend/internal/shared"
	"blog-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	processPostImage    *postJob.ProcessImageHandler
	deletePostImages    *postJob.DeleteImagesHandler
	reconcileThumbnails *postJob.ReconcileThumbnailsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		processPostImage:    postJob.NewProcessImageHandler(c.PostService),
		deletePostImages:    postJob.NewDeleteImagesHandler(c.PostService),
		reconcileThumbnails: postJob.NewReconcileThumbnailsHandler(c.PostService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Media tasks
	mux.HandleFunc(shared.TypeProcessPostImage, h.processPostImage.ProcessTask)
	mux.HandleFunc(shared.TypeDeletePostImages, h.deletePostImages.ProcessTask)

	// Maintenance tasks
	mux.HandleFunc(shared.TypeReconcilePostThumbnails, h.reconcileThumbnails.ProcessTask)
}
