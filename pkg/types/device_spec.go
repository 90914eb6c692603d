package types

import (
	"strings"

	"github.com/cellflip/cellflip-backend/pkg/enums"
)

// DeviceSpec describes the device a seller submits for trade-in. Stored as
// jsonb on the sell request and copied verbatim onto the stock item when the
// pickup completes.
type DeviceSpec struct {
	Brand        string                `json:"brand"`
	Model        string                `json:"model"`
	StorageGB    int                   `json:"storage_gb"`
	RAMGB        int                   `json:"ram_gb"`
	Color        string                `json:"color,omitempty"`
	Condition    enums.DeviceCondition `json:"condition"`
	PurchaseYear int                   `json:"purchase_year"`
	ImageKeys    []string              `json:"image_keys,omitempty"`
}

// Validate returns a short reason when the spec is not usable.
func (d DeviceSpec) Validate() string {
	if strings.TrimSpace(d.Brand) == "" {
		return "brand is required"
	}
	if strings.TrimSpace(d.Model) == "" {
		return "model is required"
	}
	if !d.Condition.IsValid() {
		return "condition is invalid"
	}
	if d.PurchaseYear < 2000 {
		return "purchase year is invalid"
	}
	return ""
}

// PickupAddress is the seller's physical pickup location, stored as jsonb.
type PickupAddress struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state,omitempty"`
	PostalCode string  `json:"postal_code"`
	Phone      string  `json:"phone,omitempty"`
}
