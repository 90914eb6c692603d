package alerts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/logger"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
)

// Service defines operator alert inbox operations.
type Service interface {
	Raise(ctx context.Context, tx *gorm.DB, alert models.AdminAlert) error
	List(ctx context.Context, params pagination.Params, unreadOnly bool) (*AlertList, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the alerts service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("alerts repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Raise appends an alert inside the triggering transaction so the inbox row
// commits together with the abnormal transition that produced it.
func (s *service) Raise(ctx context.Context, tx *gorm.DB, alert models.AdminAlert) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for alert")
	}
	if alert.SellRequestID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sell request id required")
	}
	if !alert.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid alert type %q", alert.Type))
	}
	if !alert.Severity.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid alert severity %q", alert.Severity))
	}
	if err := s.repo.WithTx(tx).Insert(ctx, &alert); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert alert")
	}

	fields := map[string]any{
		"alert_type":      alert.Type,
		"severity":        alert.Severity,
		"sell_request_id": alert.SellRequestID.String(),
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), "admin alert raised")
	return nil
}

func (s *service) List(ctx context.Context, params pagination.Params, unreadOnly bool) (*AlertList, error) {
	list, err := s.repo.List(ctx, params, unreadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alerts")
	}
	return list, nil
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "alert id required")
	}
	if _, err := s.repo.Find(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "alert not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load alert")
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark alert read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all alerts read")
	}
	return count, nil
}
