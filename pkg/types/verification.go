package types

import (
	"time"

	"github.com/cellflip/cellflip-backend/pkg/enums"
	"github.com/google/uuid"
)

// Deduction is one applied pricing penalty from a failed check.
type Deduction struct {
	Check       enums.DefectCheck `json:"check"`
	AmountCents int64             `json:"amount_cents"`
}

// VerificationReport is the rider's recorded device inspection plus the
// price math derived from it. Stored as jsonb on the sell request and never
// rewritten once set.
type VerificationReport struct {
	Checks              map[enums.DefectCheck]bool `json:"checks"`
	Deductions          []Deduction                `json:"deductions,omitempty"`
	TotalDeductionCents int64                      `json:"total_deduction_cents"`
	FinalPriceCents     int64                      `json:"final_price_cents"`
	VerifiedBy          uuid.UUID                  `json:"verified_by"`
	VerifiedAt          time.Time                  `json:"verified_at"`
}
