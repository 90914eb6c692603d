package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/enums"
)

// AdminAlert is an append-only operator inbox entry raised on abnormal
// trade-in paths. Alerts never block the transition that raised them.
type AdminAlert struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type          enums.AlertType     `gorm:"column:type;type:text;not null"`
	Severity      enums.AlertSeverity `gorm:"column:severity;type:text;not null"`
	SellRequestID uuid.UUID           `gorm:"column:sell_request_id;type:uuid;not null;index"`
	Message       string              `gorm:"column:message;type:text;not null"`
	ReadAt        *time.Time          `gorm:"column:read_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
