package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an alerts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, alert *models.AdminAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.AdminAlert, error) {
	var alert models.AdminAlert
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, unreadOnly bool) (*AlertList, error) {
	query := r.db.WithContext(ctx).Model(&models.AdminAlert{})
	if unreadOnly {
		query = query.Where("read_at IS NULL")
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

	var rows []models.AdminAlert
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(window.Fetch).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	unread, err := r.CountUnread(ctx)
	if err != nil {
		return nil, err
	}

	list := &AlertList{
		Alerts:      make([]AlertView, 0, len(rows)),
		UnreadCount: unread,
	}
	if window.HasMore(len(rows)) {
		last := rows[window.Limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
		rows = rows[:window.Limit]
	}
	for _, row := range rows {
		list.Alerts = append(list.Alerts, NewAlertView(row))
	}
	return list, nil
}

func (r *repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminAlert{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", time.Now()).Error
}

func (r *repository) MarkAllRead(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.AdminAlert{}).
		Where("read_at IS NULL").
		Update("read_at", time.Now())
	return res.RowsAffected, res.Error
}

func (r *repository) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AdminAlert{}).
		Where("read_at IS NULL").
		Count(&count).Error
	return count, err
}
