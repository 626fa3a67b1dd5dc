package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-backend/internal/shared/response"
)

// AdminOnly checks if user has admin role (chạy sau OptionalAuth)
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := GetPrincipal(c)
		if principal == nil {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		if !principal.IsAdmin() {
			response.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "Access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
