package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"blog-backend/internal/domains/user/model"
	"blog-backend/internal/domains/user/service"
	"blog-backend/internal/shared/middleware"
	"blog-backend/internal/shared/response"
)

// Handler - auth endpoints + admin user management
type Handler struct {
	service      service.Service
	secureCookie bool
}

func NewHandler(service service.Service, secureCookie bool) *Handler {
	return &Handler{service: service, secureCookie: secureCookie}
}

// ========================================
// AUTH
// ========================================

// Signup - POST /auth/signup/
// Thành công -> 302 về trang chủ; lỗi validation -> 200 + field errors.
func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request data")
		return
	}

	if _, err := h.service.Signup(c.Request.Context(), req); err != nil {
		var userErr *model.UserError
		if errors.As(err, &userErr) && isFormError(userErr.Code) {
			response.OK(c, gin.H{
				"form":   gin.H{"username": req.Username, "email": req.Email, "first_name": req.FirstName, "last_name": req.LastName},
				"errors": gin.H{"__all__": userErr.Message},
			})
			return
		}
		handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Login - POST /auth/login/?next=<path>
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request data")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, result.AccessToken, maxAge, "/", "", h.secureCookie, true)

	if next := safeNext(c.Query("next")); next != "" {
		c.Redirect(http.StatusFound, next)
		return
	}
	response.OK(c, result)
}

// Logout - POST /auth/logout/
func (h *Handler) Logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), middleware.GetPrincipal(c)); err != nil {
		handleError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, "/")
}

// ========================================
// ADMIN
// ========================================

// Delete - DELETE /admin/users/:username/ (posts bị xóa theo)
func (h *Handler) Delete(c *gin.Context) {
	username := c.Param("username")
	if err := h.service.Delete(c.Request.Context(), username); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, gin.H{"username": username, "deleted": true})
}

// ========================================
// HELPERS
// ========================================

// safeNext chỉ chấp nhận relative path trên cùng site
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	return next
}

func isFormError(code string) bool {
	switch code {
	case model.ErrCodeValidation, model.ErrCodeUsernameTaken, model.ErrCodeEmailTaken:
		return true
	}
	return false
}

func handleError(c *gin.Context, err error) {
	status, code := mapUserError(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("User request failed")
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.ErrorResponse(c, status, code, err.Error())
}

// mapUserError maps user error to HTTP status code
func mapUserError(err error) (int, string) {
	var userErr *model.UserError
	if errors.As(err, &userErr) {
		switch userErr.Code {
		case model.ErrCodeUserNotFound:
			return http.StatusNotFound, userErr.Code
		case model.ErrCodeUsernameTaken, model.ErrCodeEmailTaken:
			return http.StatusConflict, userErr.Code
		case model.ErrCodeInvalidCredentials, model.ErrCodeInvalidToken:
			return http.StatusUnauthorized, userErr.Code
		case model.ErrCodeTooManyAttempts:
			return http.StatusTooManyRequests, userErr.Code
		case model.ErrCodeValidation:
			return http.StatusBadRequest, userErr.Code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}
