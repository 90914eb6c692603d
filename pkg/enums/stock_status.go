package enums

import "fmt"

// StockStatus tracks the resale lifecycle of a stock item, independent of the
// sell request it originated from.
type StockStatus string

const (
	StockStatusDraft     StockStatus = "draft"
	StockStatusAvailable StockStatus = "available"
	StockStatusSold      StockStatus = "sold"
)

var validStockStatuses = []StockStatus{
	StockStatusDraft,
	StockStatusAvailable,
	StockStatusSold,
}

// IsValid reports whether the value is a known StockStatus.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}
