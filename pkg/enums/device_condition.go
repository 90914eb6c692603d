package enums

import "fmt"

// DeviceCondition is the seller-declared condition tier of the device.
type DeviceCondition string

const (
	DeviceConditionExcellent DeviceCondition = "excellent"
	DeviceConditionGood      DeviceCondition = "good"
	DeviceConditionFair      DeviceCondition = "fair"
	DeviceConditionPoor      DeviceCondition = "poor"
)

var validDeviceConditions = []DeviceCondition{
	DeviceConditionExcellent,
	DeviceConditionGood,
	DeviceConditionFair,
	DeviceConditionPoor,
}

// IsValid reports whether the value is a known DeviceCondition.
func (d DeviceCondition) IsValid() bool {
	for _, candidate := range validDeviceConditions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeviceCondition converts raw input into a DeviceCondition.
func ParseDeviceCondition(value string) (DeviceCondition, error) {
	for _, candidate := range validDeviceConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid device condition %q", value)
}
