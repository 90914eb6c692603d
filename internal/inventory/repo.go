package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Upsert inserts the stock item unless one already exists for the same sell
// request. The unique index on sell_request_id makes repeated completion
// calls converge on a single row.
func (r *repository) Upsert(ctx context.Context, item *models.StockItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sell_request_id"}},
			DoNothing: true,
		}).
		Create(item).Error
}

func (r *repository) FindBySellRequest(ctx context.Context, sellRequestID uuid.UUID) (*models.StockItem, error) {
	var item models.StockItem
	err := r.db.WithContext(ctx).
		Where("sell_request_id = ?", sellRequestID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*StockItemList, error) {
	query := r.db.WithContext(ctx).Model(&models.StockItem{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Brand != "" {
		query = query.Where("device ->> 'brand' = ?", filters.Brand)
	}

	window, err := pagination.Resolve(params)
	if err != nil {
		return nil, err
	}
	if window.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			window.Cursor.CreatedAt, window.Cursor.CreatedAt, window.Cursor.ID,
		)
	}

	var rows []models.StockItem
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(window.Fetch).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &StockItemList{Items: make([]StockItemView, 0, len(rows))}
	if window.HasMore(len(rows)) {
		last := rows[window.Limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:window.Limit]
	}
	for _, row := range rows {
		list.Items = append(list.Items, NewStockItemView(row))
	}
	return list, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("id = ?", id).
		Updates(updates).Error
}
