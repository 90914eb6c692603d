package enums

import "fmt"

// PickupStatus is the physical-world pickup label shown to operators. It is
// derived from the workflow status and never holds lifecycle authority.
type PickupStatus string

const (
	PickupStatusPending   PickupStatus = "pending"
	PickupStatusScheduled PickupStatus = "scheduled"
	PickupStatusPicked    PickupStatus = "picked"
	PickupStatusRejected  PickupStatus = "rejected"
	PickupStatusCompleted PickupStatus = "completed"
)

var validPickupStatuses = []PickupStatus{
	PickupStatusPending,
	PickupStatusScheduled,
	PickupStatusPicked,
	PickupStatusRejected,
	PickupStatusCompleted,
}

// IsValid reports whether the value is a known PickupStatus.
func (p PickupStatus) IsValid() bool {
	for _, candidate := range validPickupStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePickupStatus converts raw input into a PickupStatus.
func ParsePickupStatus(value string) (PickupStatus, error) {
	for _, candidate := range validPickupStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pickup status %q", value)
}
