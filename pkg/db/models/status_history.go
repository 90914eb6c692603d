package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/enums"
)

// StatusHistory is the append-only audit trail of a sell request. Rows are
// never updated, deleted, or reordered.
type StatusHistory struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellRequestID uuid.UUID            `gorm:"column:sell_request_id;type:uuid;not null;index"`
	Status        enums.WorkflowStatus `gorm:"column:status;type:text;not null"`
	ChangedBy     enums.ActorRole      `gorm:"column:changed_by;type:text;not null"`
	Note          string               `gorm:"column:note;type:text;not null"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
