package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blog-backend/internal/shared"
)

const RequestIDHeader = "X-Request-ID"

// RequestID gắn request id (giữ id từ client nếu có) vào context và response header
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(shared.ContextKeyRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
