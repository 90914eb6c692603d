package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
)

// NotificationView is the API shape of one in-app notification.
type NotificationView struct {
	ID        uuid.UUID              `json:"id"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationList wraps the paginated feed plus unread count and cursor.
type NotificationList struct {
	Notifications []NotificationView `json:"notifications"`
	UnreadCount   int64              `json:"unread_count"`
	NextCursor    string             `json:"next_cursor,omitempty"`
}

// NewNotificationView maps the model into its API shape.
func NewNotificationView(notification models.Notification) NotificationView {
	return NotificationView{
		ID:        notification.ID,
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		Read:      notification.ReadAt != nil,
		CreatedAt: notification.CreatedAt,
	}
}
