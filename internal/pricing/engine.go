package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cellflip/cellflip-backend/pkg/config"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/types"
)

// Engine computes quote and settlement prices. All outputs are integer cents;
// fractional cents are dropped in the seller's favor of determinism (floor).
type Engine struct {
	cfg config.PricingConfig
}

func NewEngine(cfg config.PricingConfig) (*Engine, error) {
	if cfg.DepreciationPerYear < 0 || cfg.DepreciationPerYear > 1 {
		return nil, fmt.Errorf("depreciation per year must be within [0, 1]")
	}
	if cfg.MaxDepreciation < 0 || cfg.MaxDepreciation > 1 {
		return nil, fmt.Errorf("max depreciation must be within [0, 1]")
	}
	return &Engine{cfg: cfg}, nil
}

// ComputeBasePrice values a device at submission time:
//
//	base = market x (1 - age x rate, capped) x condition factor
//
// The result is locked on the sell request and never recomputed, so later
// catalog price changes do not move an in-flight quote.
func (e *Engine) ComputeBasePrice(marketPriceCents int64, purchaseYear int, condition enums.DeviceCondition, now time.Time) (int64, error) {
	if marketPriceCents < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "market price must not be negative")
	}
	factor, ok := ConditionFactor(condition)
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid device condition %q", condition))
	}
	if purchaseYear > now.Year() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "purchase year is in the future")
	}

	years := now.Year() - purchaseYear
	depreciation := decimal.NewFromFloat(e.cfg.DepreciationPerYear).Mul(decimal.NewFromInt(int64(years)))
	maxDepreciation := decimal.NewFromFloat(e.cfg.MaxDepreciation)
	if depreciation.GreaterThan(maxDepreciation) {
		depreciation = maxDepreciation
	}

	price := decimal.NewFromInt(marketPriceCents).
		Mul(decimal.NewFromInt(1).Sub(depreciation)).
		Mul(factor)

	cents := price.Floor().IntPart()
	if cents < 0 {
		cents = 0
	}
	return cents, nil
}

// ComputeFinalPrice applies flat deductions for each failed doorstep check.
// The result never goes below zero.
func (e *Engine) ComputeFinalPrice(basePriceCents int64, failed []enums.DefectCheck) (int64, []types.Deduction, int64) {
	deductions := make([]types.Deduction, 0, len(failed))
	var total int64
	for _, check := range failed {
		amount := DeductionFor(check)
		if amount == 0 {
			continue
		}
		deductions = append(deductions, types.Deduction{Check: check, AmountCents: amount})
		total += amount
	}

	final := basePriceCents - total
	if final < 0 {
		final = 0
	}
	return final, deductions, total
}

// RiderPayoutCents is the flat courier fee recorded at completion.
func (e *Engine) RiderPayoutCents() int64 {
	return e.cfg.RiderFlatPayoutCents
}
