package enums

import "fmt"

// WorkflowStatus is the authoritative lifecycle state of a sell request.
type WorkflowStatus string

const (
	WorkflowStatusCreated           WorkflowStatus = "created"
	WorkflowStatusAdminApproved     WorkflowStatus = "admin_approved"
	WorkflowStatusAssignedToRider   WorkflowStatus = "assigned_to_rider"
	WorkflowStatusUnderVerification WorkflowStatus = "under_verification"
	WorkflowStatusUserAccepted      WorkflowStatus = "user_accepted"
	WorkflowStatusCompleted         WorkflowStatus = "completed"
	WorkflowStatusCancelled         WorkflowStatus = "cancelled"
	WorkflowStatusRejectedByRider   WorkflowStatus = "rejected_by_rider"
)

var validWorkflowStatuses = []WorkflowStatus{
	WorkflowStatusCreated,
	WorkflowStatusAdminApproved,
	WorkflowStatusAssignedToRider,
	WorkflowStatusUnderVerification,
	WorkflowStatusUserAccepted,
	WorkflowStatusCompleted,
	WorkflowStatusCancelled,
	WorkflowStatusRejectedByRider,
}

// AllWorkflowStatuses returns a copy of the canonical status set.
func AllWorkflowStatuses() []WorkflowStatus {
	out := make([]WorkflowStatus, len(validWorkflowStatuses))
	copy(out, validWorkflowStatuses)
	return out
}

// String implements fmt.Stringer.
func (w WorkflowStatus) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WorkflowStatus.
func (w WorkflowStatus) IsValid() bool {
	for _, candidate := range validWorkflowStatuses {
		if candidate == w {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends processing. RejectedByRider is
// terminal unless an admin explicitly reassigns a rider.
func (w WorkflowStatus) IsTerminal() bool {
	return w == WorkflowStatusCompleted || w == WorkflowStatusCancelled
}

// ParseWorkflowStatus converts raw input into a WorkflowStatus.
func ParseWorkflowStatus(value string) (WorkflowStatus, error) {
	for _, candidate := range validWorkflowStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid workflow status %q", value)
}
