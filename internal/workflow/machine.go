package workflow

import (
	"fmt"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
)

// transitions is the single allow-list every status write goes through.
// The assigned_to_rider self-loop models rider reassignment.
var transitions = map[enums.WorkflowStatus][]enums.WorkflowStatus{
	enums.WorkflowStatusCreated: {
		enums.WorkflowStatusAdminApproved,
		enums.WorkflowStatusCancelled,
	},
	enums.WorkflowStatusAdminApproved: {
		enums.WorkflowStatusAssignedToRider,
	},
	enums.WorkflowStatusAssignedToRider: {
		enums.WorkflowStatusAssignedToRider,
		enums.WorkflowStatusUnderVerification,
		enums.WorkflowStatusRejectedByRider,
	},
	enums.WorkflowStatusUnderVerification: {
		enums.WorkflowStatusUserAccepted,
		enums.WorkflowStatusCancelled,
	},
	enums.WorkflowStatusUserAccepted: {
		enums.WorkflowStatusCompleted,
	},
	enums.WorkflowStatusRejectedByRider: {
		enums.WorkflowStatusAssignedToRider,
	},
}

// CanTransition reports whether the edge from -> to is on the allow-list.
func CanTransition(from, to enums.WorkflowStatus) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Apply moves the request to the target status and returns the audit entry
// to persist alongside it. The request is only mutated when the transition
// is legal; an illegal edge leaves it untouched.
func Apply(req *models.SellRequest, target enums.WorkflowStatus, actor enums.ActorRole, note string) (*models.StatusHistory, error) {
	if req == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sell request required")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid target status %q", target))
	}
	if !actor.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid actor role %q", actor))
	}
	if !CanTransition(req.Status, target) {
		return nil, pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("transition %s -> %s is not allowed", req.Status, target),
		)
	}

	req.Status = target
	entry := &models.StatusHistory{
		SellRequestID: req.ID,
		Status:        target,
		ChangedBy:     actor,
		Note:          note,
	}
	return entry, nil
}
