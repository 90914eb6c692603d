package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

// Repository defines persistence operations for the phone model catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, model *models.PhoneModel) (*models.PhoneModel, error)
	Find(ctx context.Context, id uuid.UUID) (*models.PhoneModel, error)
	FindByIdentity(ctx context.Context, brand, model string, storageGB int) (*models.PhoneModel, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*PhoneModelList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
