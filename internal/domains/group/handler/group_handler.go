package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blog-backend/internal/domains/group/model"
	"blog-backend/internal/domains/group/service"
	"blog-backend/internal/shared/response"
)

// Handler - admin CRUD cho groups (mọi route nằm sau AdminOnly)
type Handler struct {
	service service.Service
}

func NewHandler(service service.Service) *Handler {
	return &Handler{service: service}
}

// List - GET /admin/groups/
func (h *Handler) List(c *gin.Context) {
	groups, err := h.service.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, groups)
}

// Create - POST /admin/groups/
func (h *Handler) Create(c *gin.Context) {
	var req model.GroupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request data")
		return
	}

	group, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, group)
}

// Update - PUT /admin/groups/:slug/
func (h *Handler) Update(c *gin.Context) {
	var req model.GroupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request data")
		return
	}

	group, err := h.service.Update(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, group)
}

// Delete - DELETE /admin/groups/:slug/
// Posts của group được giữ lại với group = null.
func (h *Handler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

func handleError(c *gin.Context, err error) {
	status, code := mapGroupError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Group request failed")
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, code, err.Error())
}

// mapGroupError maps group error to HTTP status code
func mapGroupError(err error) (int, string) {
	var groupErr *model.GroupError
	if errors.As(err, &groupErr) {
		switch groupErr.Code {
		case model.ErrCodeGroupNotFound:
			return http.StatusNotFound, groupErr.Code
		case model.ErrCodeSlugTaken:
			return http.StatusConflict, groupErr.Code
		case model.ErrCodeValidation:
			return http.StatusBadRequest, groupErr.Code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
