package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	"github.com/cellflip/cellflip-backend/pkg/types"
)

// ListFilters describe the inputs supported by the stock list.
type ListFilters struct {
	Status *enums.StockStatus
	Brand  string
}

// StockItemView is the API shape of one stock item.
type StockItemView struct {
	ID                 uuid.UUID         `json:"id"`
	SellRequestID      uuid.UUID         `json:"sell_request_id"`
	Device             types.DeviceSpec  `json:"device"`
	PurchasePriceCents int64             `json:"purchase_price_cents"`
	Status             enums.StockStatus `json:"status"`
	CreatedAt          time.Time         `json:"created_at"`
}

// StockItemList wraps the paginated stock plus the next page cursor.
type StockItemList struct {
	Items      []StockItemView `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

// NewStockItemView maps the model into its API shape.
func NewStockItemView(item models.StockItem) StockItemView {
	return StockItemView{
		ID:                 item.ID,
		SellRequestID:      item.SellRequestID,
		Device:             item.Device,
		PurchasePriceCents: item.PurchasePriceCents,
		Status:             item.Status,
		CreatedAt:          item.CreatedAt,
	}
}
