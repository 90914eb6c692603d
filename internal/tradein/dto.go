package tradein

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	"github.com/cellflip/cellflip-backend/pkg/types"
)

// CreateInput captures a seller's trade-in submission.
type CreateInput struct {
	SellerID      uuid.UUID
	SellerName    string
	SellerPhone   string
	Device        types.DeviceSpec
	PickupAddress types.PickupAddress
	BankDetails   *types.BankDetails
}

// BankDetailsInput replaces the payout destination before approval locks it.
type BankDetailsInput struct {
	RequestID uuid.UUID
	SellerID  uuid.UUID
	Details   types.BankDetails
}

// ApprovalDecision is the admin's gate decision on a fresh request.
type ApprovalDecision string

const (
	ApprovalDecisionApprove ApprovalDecision = "approve"
	ApprovalDecisionReject  ApprovalDecision = "reject"
)

// ApprovalInput carries the admin approval gate payload.
type ApprovalInput struct {
	RequestID uuid.UUID
	AdminID   uuid.UUID
	Decision  ApprovalDecision
	Note      string
}

// AssignRiderInput binds (or rebinds) a rider and pickup slot to a request.
type AssignRiderInput struct {
	RequestID         uuid.UUID
	AdminID           uuid.UUID
	RiderID           uuid.UUID
	PickupScheduledAt time.Time
}

// AttachEvidenceInput appends verification image references.
type AttachEvidenceInput struct {
	RequestID uuid.UUID
	RiderID   uuid.UUID
	ImageKeys []string
}

// VerifyInput is the rider's doorstep check sheet. Every known defect check
// must be present in Checks.
type VerifyInput struct {
	RequestID uuid.UUID
	RiderID   uuid.UUID
	Checks    map[enums.DefectCheck]bool
}

// RiderRejectInput is the explicit reject path for mixed check outcomes.
type RiderRejectInput struct {
	RequestID uuid.UUID
	RiderID   uuid.UUID
	Reason    string
}

// SellerDecisionInput records the seller's accept/reject of the final price.
type SellerDecisionInput struct {
	RequestID uuid.UUID
	SellerID  uuid.UUID
	Accept    bool
}

// CompletePickupInput finalizes the trade at the doorstep.
type CompletePickupInput struct {
	RequestID uuid.UUID
	RiderID   uuid.UUID
}

// SettlePayoutInput marks the seller as paid.
type SettlePayoutInput struct {
	RequestID uuid.UUID
	AdminID   uuid.UUID
	TxRef     string
}

// ListFilters describe the inputs supported by the admin request list.
type ListFilters struct {
	Status   *enums.WorkflowStatus
	SellerID *uuid.UUID
	RiderID  *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
}

// SellRequestSummary is the list row returned by the listings.
type SellRequestSummary struct {
	ID              uuid.UUID            `json:"id"`
	SellerName      string               `json:"seller_name"`
	Device          types.DeviceSpec     `json:"device"`
	Status          enums.WorkflowStatus `json:"status"`
	PickupStatus    enums.PickupStatus   `json:"pickup_status"`
	BasePriceCents  int64                `json:"base_price_cents"`
	FinalPriceCents int64                `json:"final_price_cents,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// SellRequestList wraps the paginated requests plus the next page cursor.
type SellRequestList struct {
	Requests   []SellRequestSummary `json:"requests"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

// SellRequestView is the full aggregate returned to its actors. Bank details
// are always masked on the way out.
type SellRequestView struct {
	ID                uuid.UUID                 `json:"id"`
	SellerID          uuid.UUID                 `json:"seller_id"`
	SellerName        string                    `json:"seller_name"`
	SellerPhone       string                    `json:"seller_phone"`
	Device            types.DeviceSpec          `json:"device"`
	PickupAddress     types.PickupAddress       `json:"pickup_address"`
	Status            enums.WorkflowStatus      `json:"status"`
	PickupStatus      enums.PickupStatus        `json:"pickup_status"`
	BasePriceCents    int64                     `json:"base_price_cents"`
	Verification      *types.VerificationReport `json:"verification,omitempty"`
	SellerDecision    enums.SellerDecision      `json:"seller_decision"`
	AssignedRiderID   *uuid.UUID                `json:"assigned_rider_id,omitempty"`
	PickupScheduledAt *time.Time                `json:"pickup_scheduled_at,omitempty"`
	EvidenceImageKeys []string                  `json:"evidence_image_keys,omitempty"`
	BankDetails       *types.BankDetails        `json:"bank_details,omitempty"`
	PayoutStatus      enums.PayoutStatus        `json:"payout_status"`
	PayoutTxRef       *string                   `json:"payout_tx_ref,omitempty"`
	PaidAt            *time.Time                `json:"paid_at,omitempty"`
	RiderPayoutCents  *int64                    `json:"rider_payout_cents,omitempty"`
	History           []HistoryEntry            `json:"history,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// HistoryEntry is one audit trail row in API shape.
type HistoryEntry struct {
	Status    enums.WorkflowStatus `json:"status"`
	ChangedBy enums.ActorRole      `json:"changed_by"`
	Note      string               `json:"note,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewSellRequestView maps the aggregate into its API shape.
func NewSellRequestView(req *models.SellRequest) *SellRequestView {
	if req == nil {
		return nil
	}
	view := &SellRequestView{
		ID:                req.ID,
		SellerID:          req.SellerID,
		SellerName:        req.SellerName,
		SellerPhone:       req.SellerPhone,
		Device:            req.Device,
		PickupAddress:     req.PickupAddress,
		Status:            req.Status,
		PickupStatus:      req.PickupStatus(),
		BasePriceCents:    req.BasePriceCents,
		Verification:      req.Verification,
		SellerDecision:    req.SellerDecision,
		AssignedRiderID:   req.AssignedRiderID,
		PickupScheduledAt: req.PickupScheduledAt,
		EvidenceImageKeys: req.EvidenceImageKeys,
		PayoutStatus:      req.PayoutStatus,
		PayoutTxRef:       req.PayoutTxRef,
		PaidAt:            req.PaidAt,
		RiderPayoutCents:  req.RiderPayoutCents,
		CreatedAt:         req.CreatedAt,
		UpdatedAt:         req.UpdatedAt,
	}
	if req.BankDetails != nil {
		masked := req.BankDetails.Masked()
		view.BankDetails = &masked
	}
	for _, entry := range req.History {
		view.History = append(view.History, HistoryEntry{
			Status:    entry.Status,
			ChangedBy: entry.ChangedBy,
			Note:      entry.Note,
			CreatedAt: entry.CreatedAt,
		})
	}
	return view
}

// NewSellRequestSummary maps the aggregate into its list row shape.
func NewSellRequestSummary(req models.SellRequest) SellRequestSummary {
	return SellRequestSummary{
		ID:              req.ID,
		SellerName:      req.SellerName,
		Device:          req.Device,
		Status:          req.Status,
		PickupStatus:    req.PickupStatus(),
		BasePriceCents:  req.BasePriceCents,
		FinalPriceCents: req.FinalPriceCents(),
		CreatedAt:       req.CreatedAt,
	}
}
