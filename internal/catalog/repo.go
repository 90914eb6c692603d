package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, model *models.PhoneModel) (*models.PhoneModel, error) {
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, err
	}
	return model, nil
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.PhoneModel, error) {
	var model models.PhoneModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *repository) FindByIdentity(ctx context.Context, brand, model string, storageGB int) (*models.PhoneModel, error) {
	var row models.PhoneModel
	err := r.db.WithContext(ctx).
		Where("brand = ? AND model = ? AND storage_gb = ?", brand, model, storageGB).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*PhoneModelList, error) {
	query := r.db.WithContext(ctx).Model(&models.PhoneModel{})
	if filters.Brand != "" {
		query = query.Where("brand = ?", filters.Brand)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
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

	var rows []models.PhoneModel
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(window.Fetch).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &PhoneModelList{Models: make([]PhoneModelView, 0, len(rows))}
	if window.HasMore(len(rows)) {
		last := rows[window.Limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:window.Limit]
	}
	for _, row := range rows {
		list.Models = append(list.Models, NewPhoneModelView(row))
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PhoneModel{}).
		Where("id = ?", id).
		Updates(updates).Error
}
