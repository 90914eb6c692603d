package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/cellflip/cellflip-backend/pkg/enums"
)

// conditionFactors scale the depreciated market price by cosmetic condition
// as declared by the seller at submission time.
var conditionFactors = map[enums.DeviceCondition]decimal.Decimal{
	enums.DeviceConditionExcellent: decimal.NewFromFloat(1.00),
	enums.DeviceConditionGood:      decimal.NewFromFloat(0.90),
	enums.DeviceConditionFair:      decimal.NewFromFloat(0.75),
	enums.DeviceConditionPoor:      decimal.NewFromFloat(0.60),
}

// defectDeductionCents is the flat amount removed from the base price for
// each failed doorstep check.
var defectDeductionCents = map[enums.DefectCheck]int64{
	enums.DefectCheckScreenCrack:   3000,
	enums.DefectCheckBodyDent:      2000,
	enums.DefectCheckSpeakerFault:  1500,
	enums.DefectCheckMicFault:      1500,
	enums.DefectCheckBatteryHealth: 2000,
	enums.DefectCheckCameraFault:   2500,
}

// DeductionFor returns the flat deduction for a failed check, or 0 for an
// unknown check.
func DeductionFor(check enums.DefectCheck) int64 {
	return defectDeductionCents[check]
}

// ConditionFactor returns the multiplier for the given condition and whether
// the condition is priceable at all.
func ConditionFactor(condition enums.DeviceCondition) (decimal.Decimal, bool) {
	factor, ok := conditionFactors[condition]
	return factor, ok
}
