package tradein

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sell request repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, req *models.SellRequest) (*models.SellRequest, error) {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.SellRequest, error) {
	var req models.SellRequest
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindForUpdate locks the aggregate row for the duration of the enclosing
// transaction so two callers cannot both pass a precondition check.
func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.SellRequest, error) {
	var req models.SellRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) Save(ctx context.Context, req *models.SellRequest) error {
	return r.db.WithContext(ctx).
		Omit("History").
		Save(req).Error
}

func (r *repository) AppendHistory(ctx context.Context, entry *models.StatusHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*SellRequestList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SellRequest{}).
		Where("seller_id = ?", sellerID)
	return listPage(query, params)
}

func (r *repository) ListByRider(ctx context.Context, riderID uuid.UUID, params pagination.Params) (*SellRequestList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SellRequest{}).
		Where("assigned_rider_id = ?", riderID)
	return listPage(query, params)
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*SellRequestList, error) {
	query := r.db.WithContext(ctx).Model(&models.SellRequest{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SellerID != nil {
		query = query.Where("seller_id = ?", *filters.SellerID)
	}
	if filters.RiderID != nil {
		query = query.Where("assigned_rider_id = ?", *filters.RiderID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return listPage(query, params)
}

func listPage(query *gorm.DB, params pagination.Params) (*SellRequestList, error) {
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

	var rows []models.SellRequest
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(window.Fetch).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &SellRequestList{Requests: make([]SellRequestSummary, 0, len(rows))}
	if window.HasMore(len(rows)) {
		last := rows[window.Limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:window.Limit]
	}
	for _, row := range rows {
		list.Requests = append(list.Requests, NewSellRequestSummary(row))
	}
	return list, nil
}
