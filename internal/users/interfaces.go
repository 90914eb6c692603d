package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

// Repository defines persistence operations for user identities.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Find(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	ListByRole(ctx context.Context, role enums.ActorRole, params pagination.Params) (*UserList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
