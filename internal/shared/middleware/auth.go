package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-backend/internal/shared"
	"blog-backend/pkg/logger"
)

const (
	// AccessTokenCookie - HttpOnly cookie chứa JWT sau khi login
	AccessTokenCookie = "access_token"

	LoginURL = "/auth/login/"
)

// Authenticator verify token -> principal (implemented bởi user service)
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*shared.Principal, error)
}

// OptionalAuth resolve user từ Authorization: Bearer header hoặc cookie.
// Không có token hoặc token không hợp lệ -> request tiếp tục như anonymous.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("OptionalAuth: rejected token: " + err.Error())
			c.Next()
			return
		}

		c.Set(shared.ContextKeyPrincipal, principal)
		c.Next()
	}
}

// RequireLogin redirect anonymous user tới login page với ?next=<path>
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetPrincipal(c) == nil {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, LoginURL+"?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetPrincipal trả về user hiện tại, nil nếu anonymous
func GetPrincipal(c *gin.Context) *shared.Principal {
	v, exists := c.Get(shared.ContextKeyPrincipal)
	if !exists {
		return nil
	}
	p, _ := v.(*shared.Principal)
	return p
}

func extractToken(c *gin.Context) string {
	// 1. Authorization: Bearer <token>
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// 2. Cookie
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}
