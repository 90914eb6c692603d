package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
)

// AlertView is the API shape of one operator alert.
type AlertView struct {
	ID            uuid.UUID           `json:"id"`
	Type          enums.AlertType     `json:"type"`
	Severity      enums.AlertSeverity `json:"severity"`
	SellRequestID uuid.UUID           `json:"sell_request_id"`
	Message       string              `json:"message"`
	Read          bool                `json:"read"`
	CreatedAt     time.Time           `json:"created_at"`
}

// AlertList wraps the paginated inbox plus unread count and next cursor.
type AlertList struct {
	Alerts      []AlertView `json:"alerts"`
	UnreadCount int64       `json:"unread_count"`
	NextCursor  string      `json:"next_cursor,omitempty"`
}

// NewAlertView maps the model into its API shape.
func NewAlertView(alert models.AdminAlert) AlertView {
	return AlertView{
		ID:            alert.ID,
		Type:          alert.Type,
		Severity:      alert.Severity,
		SellRequestID: alert.SellRequestID,
		Message:       alert.Message,
		Read:          alert.ReadAt != nil,
		CreatedAt:     alert.CreatedAt,
	}
}
