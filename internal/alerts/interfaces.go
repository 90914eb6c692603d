package alerts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

// Repository defines persistence operations for the operator alert inbox.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, alert *models.AdminAlert) error
	Find(ctx context.Context, id uuid.UUID) (*models.AdminAlert, error)
	List(ctx context.Context, params pagination.Params, unreadOnly bool) (*AlertList, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	CountUnread(ctx context.Context) (int64, error)
}
