package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"blog-backend/internal/domains/post/model"
	"blog-backend/internal/domains/post/service"
	"blog-backend/internal/infrastructure/storage"
	"blog-backend/internal/shared/middleware"
	"blog-backend/internal/shared/pagination"
	"blog-backend/internal/shared/response"
)

// Handler - HTTP handlers cho listing, detail và create/edit form
type Handler struct {
	service service.Service
}

func NewHandler(service service.Service) *Handler {
	return &Handler{service: service}
}

// ========================================
// LISTINGS
// ========================================

// Index - GET /?page=N
func (h *Handler) Index(c *gin.Context) {
	data, err := h.service.Index(c.Request.Context(), pagination.ParsePage(c.Query("page")))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, data)
}

// GroupPosts - GET /group/:slug/?page=N
func (h *Handler) GroupPosts(c *gin.Context) {
	data, err := h.service.GroupPosts(c.Request.Context(), c.Param("slug"), pagination.ParsePage(c.Query("page")))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, data)
}

// Profile - GET /profile/:username/?page=N
func (h *Handler) Profile(c *gin.Context) {
	data, err := h.service.Profile(c.Request.Context(), c.Param("username"), pagination.ParsePage(c.Query("page")))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, data)
}

// Detail - GET /posts/:post_id/
func (h *Handler) Detail(c *gin.Context) {
	data, err := h.service.Detail(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, data)
}

// ========================================
// CREATE
// ========================================

// CreateForm - GET /create/ (RequireLogin)
func (h *Handler) CreateForm(c *gin.Context) {
	data, err := h.service.NewForm(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, data)
}

// Create - POST /create/ (RequireLogin)
func (h *Handler) Create(c *gin.Context) {
	principal := middleware.GetPrincipal(c)

	form, image, err := bindForm(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	_, err = h.service.Create(c.Request.Context(), principal, form, image)
	if err != nil {
		h.renderInvalidOrError(c, err, form, nil)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", principal.Username))
}

// ========================================
// EDIT
// ========================================

// EditForm - GET /posts/:post_id/edit/ (RequireLogin)
func (h *Handler) EditForm(c *gin.Context) {
	postID := c.Param("post_id")

	data, err := h.service.EditForm(c.Request.Context(), middleware.GetPrincipal(c), postID)
	if err != nil {
		if errors.Is(err, model.ErrNotAuthor) {
			redirectToPost(c, postID)
			return
		}
		h.handleError(c, err)
		return
	}
	response.OK(c, data)
}

// Edit - POST /posts/:post_id/edit/ (RequireLogin)
// Non-author bị redirect về detail, post không đổi.
func (h *Handler) Edit(c *gin.Context) {
	postID := c.Param("post_id")

	form, image, err := bindForm(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.service.Update(c.Request.Context(), middleware.GetPrincipal(c), postID, form, image)
	if err != nil {
		if errors.Is(err, model.ErrNotAuthor) {
			redirectToPost(c, postID)
			return
		}
		var id *uuid.UUID
		if parsed, perr := uuid.Parse(postID); perr == nil {
			id = &parsed
		}
		h.renderInvalidOrError(c, err, form, id)
		return
	}

	redirectToPost(c, post.ID.String())
}

// ========================================
// ADMIN EXPORT
// ========================================

// Export - GET /admin/posts/export (AdminOnly)
func (h *Handler) Export(c *gin.Context) {
	filename := fmt.Sprintf("posts-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if err := h.service.Export(c.Request.Context(), c.Writer); err != nil {
		log.Error().Err(err).Msg("Export posts failed")
		// Header đã gửi; chỉ có thể hủy request
		_ = c.Error(err)
		c.Abort()
	}
}

// ========================================
// HELPERS
// ========================================

// bindForm bind text/group từ form, multipart hoặc JSON body + file "image" optional
func bindForm(c *gin.Context) (model.PostForm, *model.ImageUpload, error) {
	var form model.PostForm
	if err := c.ShouldBind(&form); err != nil {
		return form, nil, fmt.Errorf("invalid form data: %w", err)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		// Không có file (hoặc không phải multipart) -> không có ảnh
		return form, nil, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return form, nil, fmt.Errorf("cannot open image: %w", err)
	}
	defer file.Close()

	// Đọc tối đa MaxSize+1 byte: đủ để image processor báo "too large"
	data, err := io.ReadAll(io.LimitReader(file, storage.DefaultMaxImageSize+1))
	if err != nil {
		return form, nil, fmt.Errorf("cannot read image: %w", err)
	}
	return form, &model.ImageUpload{Filename: fileHeader.Filename, Data: data}, nil
}

// renderInvalidOrError: ValidationError -> 200 + form context với errors, còn lại -> handleError
func (h *Handler) renderInvalidOrError(c *gin.Context, err error, form model.PostForm, postID *uuid.UUID) {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		h.handleError(c, err)
		return
	}

	data, ctxErr := h.service.BuildFormContext(c.Request.Context(), form, verr.Errors, postID)
	if ctxErr != nil {
		h.handleError(c, ctxErr)
		return
	}
	response.OK(c, data)
}

func redirectToPost(c *gin.Context, postID string) {
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%s/", postID))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status, code := mapPostError(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("Post request failed")
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, code, err.Error())
}

// mapPostError maps post error to HTTP status code
func mapPostError(err error) (int, string) {
	var postErr *model.PostError
	if errors.As(err, &postErr) {
		switch postErr.Code {
		case model.ErrCodePostNotFound, model.ErrCodeAuthorNotFound, model.ErrCodeGroupNotFound:
			return http.StatusNotFound, postErr.Code
		case model.ErrCodeNotAuthor:
			return http.StatusForbidden, postErr.Code
		}
	}
	if errors.Is(err, model.ErrStorage) {
		return http.StatusServiceUnavailable, model.ErrCodeStorage
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
