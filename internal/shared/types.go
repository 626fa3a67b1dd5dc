package shared

import (
	"time"

	"github.com/google/uuid"
)

// Context keys dùng chung giữa middleware và handlers
const (
	ContextKeyPrincipal = "principal"
	ContextKeyRequestID = "request_id"
)

// Asynq task types
const (
	TypeProcessPostImage        = "post:process_image"
	TypeDeletePostImages        = "post:delete_images"
	TypeReconcilePostThumbnails = "post:reconcile_thumbnails"
)

// Asynq queues
const (
	QueueDefault     = "default"
	QueueMaintenance = "maintenance"
)

// Principal - user đã xác thực của request hiện tại.
// Set bởi OptionalAuth, đọc bởi handlers (để tránh import cycle với user domain).
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     string
	TokenID  string

	// ExpiresAt - thời điểm token hết hạn (revoke key sống tới lúc này)
	ExpiresAt time.Time
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == "admin"
}

// ProcessPostImagePayload - payload cho TypeProcessPostImage
type ProcessPostImagePayload struct {
	PostID   string `json:"post_id"`
	ImageKey string `json:"image_key"`
}

// DeletePostImagesPayload - payload cho TypeDeletePostImages
type DeletePostImagesPayload struct {
	AuthorID string `json:"author_id"`
}

// ReconcileThumbnailsPayload - payload cho TypeReconcilePostThumbnails
type ReconcileThumbnailsPayload struct {
	Limit int `json:"limit"`
}
