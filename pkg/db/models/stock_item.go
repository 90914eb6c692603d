package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/enums"
	"github.com/cellflip/cellflip-backend/pkg/types"
)

// StockItem is a device entering resale inventory after a completed pickup.
// The unique index on SellRequestID is what makes the completion upsert
// idempotent: at most one stock item per sell request.
type StockItem struct {
	ID                 uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellRequestID      uuid.UUID         `gorm:"column:sell_request_id;type:uuid;not null;uniqueIndex:ux_stock_items_sell_request"`
	Device             types.DeviceSpec  `gorm:"column:device;type:jsonb;serializer:json"`
	PurchasePriceCents int64             `gorm:"column:purchase_price_cents;not null"`
	Status             enums.StockStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	CreatedAt          time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
