package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db"
	"github.com/cellflip/cellflip-backend/pkg/db/models"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

// Service defines catalog operations. MarketPriceCents doubles as the price
// source consumed by the trade-in valuation at request creation.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*PhoneModelView, error)
	Get(ctx context.Context, id uuid.UUID) (*PhoneModelView, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*PhoneModelList, error)
	UpdatePrice(ctx context.Context, input UpdatePriceInput) (*PhoneModelView, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	MarketPriceCents(ctx context.Context, brand, model string, storageGB int) (int64, error)
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*PhoneModelView, error) {
	if strings.TrimSpace(input.Brand) == "" || strings.TrimSpace(input.Model) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand and model are required")
	}
	if input.StorageGB <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage must be positive")
	}
	if input.MarketPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "market price must not be negative")
	}
	if input.ReleaseYear < 2000 || input.ReleaseYear > time.Now().Year()+1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "release year is invalid")
	}

	model := &models.PhoneModel{
		Brand:            strings.TrimSpace(input.Brand),
		Model:            strings.TrimSpace(input.Model),
		StorageGB:        input.StorageGB,
		RAMGB:            input.RAMGB,
		MarketPriceCents: input.MarketPriceCents,
		ReleaseYear:      input.ReleaseYear,
		IsActive:         true,
	}
	created, err := s.repo.Create(ctx, model)
	if err != nil {
		if db.IsUniqueViolation(err, "ux_phone_models_identity") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "catalog entry already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create catalog entry")
	}
	view := NewPhoneModelView(*created)
	return &view, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PhoneModelView, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog entry id required")
	}
	model, err := s.repo.Find(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog entry")
	}
	view := NewPhoneModelView(*model)
	return &view, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*PhoneModelList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog")
	}
	return list, nil
}

func (s *service) UpdatePrice(ctx context.Context, input UpdatePriceInput) (*PhoneModelView, error) {
	if input.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog entry id required")
	}
	if input.MarketPriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "market price must not be negative")
	}
	if _, err := s.Get(ctx, input.ID); err != nil {
		return nil, err
	}
	err := s.repo.Update(ctx, input.ID, map[string]any{"market_price_cents": input.MarketPriceCents})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update market price")
	}
	return s.Get(ctx, input.ID)
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "catalog entry id required")
	}
	if err := s.repo.Update(ctx, id, map[string]any{"is_active": active}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update catalog entry")
	}
	return nil
}

// MarketPriceCents resolves the current market price for an active entry.
func (s *service) MarketPriceCents(ctx context.Context, brand, model string, storageGB int) (int64, error) {
	row, err := s.repo.FindByIdentity(ctx, brand, model, storageGB)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "device is not in the trade-in catalog")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog entry")
	}
	if !row.IsActive {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "device is no longer accepted for trade-in")
	}
	return row.MarketPriceCents, nil
}
