package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

// Repository defines persistence operations for in-app notifications.
type Repository interface {
	Insert(ctx context.Context, notification *models.Notification) error
	Find(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params, unreadOnly bool) (*NotificationList, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}
