package enums

import "fmt"

// SellerDecision records the seller's answer to the final price. It is
// written exactly once: pending -> accepted or pending -> rejected.
type SellerDecision string

const (
	SellerDecisionPending  SellerDecision = "pending"
	SellerDecisionAccepted SellerDecision = "accepted"
	SellerDecisionRejected SellerDecision = "rejected"
)

var validSellerDecisions = []SellerDecision{
	SellerDecisionPending,
	SellerDecisionAccepted,
	SellerDecisionRejected,
}

// Decided reports whether the seller has already answered.
func (s SellerDecision) Decided() bool {
	return s == SellerDecisionAccepted || s == SellerDecisionRejected
}

// IsValid reports whether the value is a known SellerDecision.
func (s SellerDecision) IsValid() bool {
	for _, candidate := range validSellerDecisions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSellerDecision converts raw input into a SellerDecision.
func ParseSellerDecision(value string) (SellerDecision, error) {
	for _, candidate := range validSellerDecisions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seller decision %q", value)
}
