package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
)

// CreateInput captures a new catalog entry.
type CreateInput struct {
	Brand            string
	Model            string
	StorageGB        int
	RAMGB            int
	MarketPriceCents int64
	ReleaseYear      int
}

// UpdatePriceInput adjusts the market price of an existing entry. In-flight
// quotes are unaffected: base prices are locked at request creation.
type UpdatePriceInput struct {
	ID               uuid.UUID
	MarketPriceCents int64
}

// ListFilters describe the inputs supported by the catalog list.
type ListFilters struct {
	Brand      string
	ActiveOnly bool
}

// PhoneModelView is the API shape of one catalog entry.
type PhoneModelView struct {
	ID               uuid.UUID `json:"id"`
	Brand            string    `json:"brand"`
	Model            string    `json:"model"`
	StorageGB        int       `json:"storage_gb"`
	RAMGB            int       `json:"ram_gb"`
	MarketPriceCents int64     `json:"market_price_cents"`
	ReleaseYear      int       `json:"release_year"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// PhoneModelList wraps the paginated catalog plus the next page cursor.
type PhoneModelList struct {
	Models     []PhoneModelView `json:"models"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// NewPhoneModelView maps the model into its API shape.
func NewPhoneModelView(m models.PhoneModel) PhoneModelView {
	return PhoneModelView{
		ID:               m.ID,
		Brand:            m.Brand,
		Model:            m.Model,
		StorageGB:        m.StorageGB,
		RAMGB:            m.RAMGB,
		MarketPriceCents: m.MarketPriceCents,
		ReleaseYear:      m.ReleaseYear,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
	}
}
