package tradein

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

// Repository defines persistence operations for the sell request aggregate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, req *models.SellRequest) (*models.SellRequest, error)
	Find(ctx context.Context, id uuid.UUID) (*models.SellRequest, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.SellRequest, error)
	Save(ctx context.Context, req *models.SellRequest) error
	AppendHistory(ctx context.Context, entry *models.StatusHistory) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*SellRequestList, error)
	ListByRider(ctx context.Context, riderID uuid.UUID, params pagination.Params) (*SellRequestList, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*SellRequestList, error)
}
