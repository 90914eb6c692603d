package models

import (
	"time"

	"github.com/google/uuid"
)

// PhoneModel is a catalog entry carrying the current market price used as the
// starting point of the base valuation.
type PhoneModel struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Brand            string    `gorm:"column:brand;type:text;not null;uniqueIndex:ux_phone_models_identity"`
	Model            string    `gorm:"column:model;type:text;not null;uniqueIndex:ux_phone_models_identity"`
	StorageGB        int       `gorm:"column:storage_gb;not null;uniqueIndex:ux_phone_models_identity"`
	RAMGB            int       `gorm:"column:ram_gb;not null"`
	MarketPriceCents int64     `gorm:"column:market_price_cents;not null"`
	ReleaseYear      int       `gorm:"column:release_year;not null"`
	IsActive         bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
