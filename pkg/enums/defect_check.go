package enums

import "fmt"

// DefectCheck names a single device-condition check performed by the rider.
// A check that fails maps to a fixed deduction in the pricing rule table.
type DefectCheck string

const (
	DefectCheckScreenCrack   DefectCheck = "screen_crack"
	DefectCheckBodyDent      DefectCheck = "body_dent"
	DefectCheckSpeakerFault  DefectCheck = "speaker_fault"
	DefectCheckMicFault      DefectCheck = "mic_fault"
	DefectCheckBatteryHealth DefectCheck = "battery_health"
	DefectCheckCameraFault   DefectCheck = "camera_fault"
)

var validDefectChecks = []DefectCheck{
	DefectCheckScreenCrack,
	DefectCheckBodyDent,
	DefectCheckSpeakerFault,
	DefectCheckMicFault,
	DefectCheckBatteryHealth,
	DefectCheckCameraFault,
}

// AllDefectChecks returns the canonical check set in stable order.
func AllDefectChecks() []DefectCheck {
	out := make([]DefectCheck, len(validDefectChecks))
	copy(out, validDefectChecks)
	return out
}

// IsValid reports whether the value is a known DefectCheck.
func (d DefectCheck) IsValid() bool {
	for _, candidate := range validDefectChecks {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDefectCheck converts raw input into a DefectCheck.
func ParseDefectCheck(value string) (DefectCheck, error) {
	for _, candidate := range validDefectChecks {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid defect check %q", value)
}
