package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

// Service defines resale stock operations.
type Service interface {
	Upsert(ctx context.Context, tx *gorm.DB, item models.StockItem) error
	Get(ctx context.Context, sellRequestID uuid.UUID) (*StockItemView, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*StockItemList, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.StockStatus) error
}

type service struct {
	repo Repository
}

// NewService builds the stock service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

// Upsert runs inside the caller's completion transaction.
func (s *service) Upsert(ctx context.Context, tx *gorm.DB, item models.StockItem) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock upsert")
	}
	if item.SellRequestID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sell request id required")
	}
	if item.PurchasePriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase price must not be negative")
	}
	if err := s.repo.WithTx(tx).Upsert(ctx, &item); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert stock item")
	}
	return nil
}

func (s *service) Get(ctx context.Context, sellRequestID uuid.UUID) (*StockItemView, error) {
	if sellRequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sell request id required")
	}
	item, err := s.repo.FindBySellRequest(ctx, sellRequestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock item")
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock item not found")
	}
	view := NewStockItemView(*item)
	return &view, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*StockItemList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock")
	}
	return list, nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.StockStatus) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock item id required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock status %q", status))
	}
	if err := s.repo.UpdateStatus(ctx, id, map[string]any{"status": status}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock status")
	}
	return nil
}
