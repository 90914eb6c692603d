package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/enums"
	"github.com/cellflip/cellflip-backend/pkg/types"
)

// SellRequest is the aggregate root of the trade-in lifecycle. Status is only
// ever written through the workflow machine; everything else mutates through
// the named trade-in operations.
type SellRequest struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index"`
	SellerName  string    `gorm:"column:seller_name;type:text;not null"`
	SellerPhone string    `gorm:"column:seller_phone;type:text;not null"`

	Device        types.DeviceSpec    `gorm:"column:device;type:jsonb;serializer:json"`
	PickupAddress types.PickupAddress `gorm:"column:pickup_address;type:jsonb;serializer:json"`

	Status enums.WorkflowStatus `gorm:"column:status;type:text;not null;default:'created';index"`

	// BasePriceCents is computed once at creation and never recomputed.
	BasePriceCents int64 `gorm:"column:base_price_cents;not null"`

	Verification   *types.VerificationReport `gorm:"column:verification;type:jsonb;serializer:json"`
	SellerDecision enums.SellerDecision      `gorm:"column:seller_decision;type:text;not null;default:'pending'"`

	AssignedRiderID   *uuid.UUID `gorm:"column:assigned_rider_id;type:uuid;index"`
	RiderAssignedAt   *time.Time `gorm:"column:rider_assigned_at"`
	PickupScheduledAt *time.Time `gorm:"column:pickup_scheduled_at"`

	EvidenceImageKeys []string `gorm:"column:evidence_image_keys;type:jsonb;serializer:json"`

	BankDetails       *types.BankDetails `gorm:"column:bank_details;type:jsonb;serializer:json"`
	BankDetailsLocked bool               `gorm:"column:bank_details_locked;not null;default:false"`

	PayoutStatus enums.PayoutStatus `gorm:"column:payout_status;type:text;not null;default:'pending'"`
	PayoutTxRef  *string            `gorm:"column:payout_tx_ref;type:text"`
	PaidAt       *time.Time         `gorm:"column:paid_at"`

	RiderPayoutCents *int64     `gorm:"column:rider_payout_cents"`
	RiderPayoutAt    *time.Time `gorm:"column:rider_payout_at"`

	History []StatusHistory `gorm:"foreignKey:SellRequestID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// FinalPriceCents returns the verified final price, or 0 when the device has
// not been verified yet.
func (s *SellRequest) FinalPriceCents() int64 {
	if s.Verification == nil {
		return 0
	}
	return s.Verification.FinalPriceCents
}

// PickupStatus derives the physical-world pickup label from the workflow
// status. The label carries no lifecycle authority of its own.
func (s *SellRequest) PickupStatus() enums.PickupStatus {
	switch s.Status {
	case enums.WorkflowStatusAssignedToRider:
		return enums.PickupStatusScheduled
	case enums.WorkflowStatusUnderVerification, enums.WorkflowStatusUserAccepted:
		return enums.PickupStatusPicked
	case enums.WorkflowStatusCompleted:
		return enums.PickupStatusCompleted
	case enums.WorkflowStatusRejectedByRider:
		return enums.PickupStatusRejected
	case enums.WorkflowStatusCancelled:
		if s.SellerDecision == enums.SellerDecisionRejected {
			return enums.PickupStatusRejected
		}
		return enums.PickupStatusPending
	default:
		return enums.PickupStatusPending
	}
}
