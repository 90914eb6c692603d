package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

// Repository defines persistence operations for resale stock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, item *models.StockItem) error
	FindBySellRequest(ctx context.Context, sellRequestID uuid.UUID) (*models.StockItem, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*StockItemList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
