package tradein

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/internal/pricing"
	"github.com/cellflip/cellflip-backend/internal/workflow"
	"github.com/cellflip/cellflip-backend/pkg/config"
	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/logger"
	"github.com/cellflip/cellflip-backend/pkg/outbox"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
	"github.com/cellflip/cellflip-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PriceSource resolves the current market price for a catalog device.
type PriceSource interface {
	MarketPriceCents(ctx context.Context, brand, model string, storageGB int) (int64, error)
}

// StockUpserter places a completed device into resale inventory inside the
// completion transaction.
type StockUpserter interface {
	Upsert(ctx context.Context, tx *gorm.DB, item models.StockItem) error
}

// AlertRaiser records an operator alert inside the triggering transaction.
type AlertRaiser interface {
	Raise(ctx context.Context, tx *gorm.DB, alert models.AdminAlert) error
}

// RiderDirectory confirms a rider identity before assignment.
type RiderDirectory interface {
	FindRider(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// NotificationSink receives best-effort in-app notification intents. Called
// after commit; failures are logged and never surfaced to the caller.
type NotificationSink interface {
	Push(ctx context.Context, notification models.Notification) error
}

// Service defines the trade-in lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*SellRequestView, error)
	UpdateBankDetails(ctx context.Context, input BankDetailsInput) (*SellRequestView, error)
	Approval(ctx context.Context, input ApprovalInput) (*SellRequestView, error)
	AssignRider(ctx context.Context, input AssignRiderInput) (*SellRequestView, error)
	AttachEvidence(ctx context.Context, input AttachEvidenceInput) (*SellRequestView, error)
	Verify(ctx context.Context, input VerifyInput) (*SellRequestView, error)
	RiderReject(ctx context.Context, input RiderRejectInput) (*SellRequestView, error)
	SellerDecision(ctx context.Context, input SellerDecisionInput) (*SellRequestView, error)
	CompletePickup(ctx context.Context, input CompletePickupInput) (*SellRequestView, error)
	SettlePayout(ctx context.Context, input SettlePayoutInput) (*SellRequestView, error)
	Get(ctx context.Context, requestID, actorID uuid.UUID, role enums.ActorRole) (*SellRequestView, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*SellRequestList, error)
	ListByRider(ctx context.Context, riderID uuid.UUID, params pagination.Params) (*SellRequestList, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*SellRequestList, error)
}

type service struct {
	repo          Repository
	tx            txRunner
	outbox        outboxPublisher
	engine        *pricing.Engine
	prices        PriceSource
	stock         StockUpserter
	alerts        AlertRaiser
	riders        RiderDirectory
	notifications NotificationSink
	logg          *logger.Logger
	verification  config.VerificationConfig
	payout        config.PayoutConfig
	now           func() time.Time
}

// RequestStatusEvent is the generic aggregate status payload.
type RequestStatusEvent struct {
	RequestID uuid.UUID            `json:"request_id"`
	SellerID  uuid.UUID            `json:"seller_id"`
	Status    enums.WorkflowStatus `json:"status"`
}

// RiderAssignedEvent surfaces the assignment details.
type RiderAssignedEvent struct {
	RequestID         uuid.UUID `json:"request_id"`
	RiderID           uuid.UUID `json:"rider_id"`
	PickupScheduledAt time.Time `json:"pickup_scheduled_at"`
}

// FinalPriceReadyEvent is the seller-facing notification intent payload.
type FinalPriceReadyEvent struct {
	RequestID           uuid.UUID `json:"request_id"`
	SellerID            uuid.UUID `json:"seller_id"`
	BasePriceCents      int64     `json:"base_price_cents"`
	TotalDeductionCents int64     `json:"total_deduction_cents"`
	FinalPriceCents     int64     `json:"final_price_cents"`
}

// RequestCompletedEvent captures the settlement numbers at completion.
type RequestCompletedEvent struct {
	RequestID          uuid.UUID `json:"request_id"`
	SellerID           uuid.UUID `json:"seller_id"`
	PurchasePriceCents int64     `json:"purchase_price_cents"`
	RiderPayoutCents   int64     `json:"rider_payout_cents"`
}

// PayoutSettledEvent records the ledger write.
type PayoutSettledEvent struct {
	RequestID uuid.UUID `json:"request_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	TxRef     string    `json:"tx_ref"`
	PaidCents int64     `json:"paid_cents"`
}

// NewService builds the trade-in service with the required dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	engine *pricing.Engine,
	prices PriceSource,
	stock StockUpserter,
	alerts AlertRaiser,
	riders RiderDirectory,
	notifications NotificationSink,
	logg *logger.Logger,
	verification config.VerificationConfig,
	payout config.PayoutConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tradein repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if prices == nil {
		return nil, fmt.Errorf("price source required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock upserter required")
	}
	if alerts == nil {
		return nil, fmt.Errorf("alert raiser required")
	}
	if riders == nil {
		return nil, fmt.Errorf("rider directory required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notification sink required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:          repo,
		tx:            tx,
		outbox:        outboxSvc,
		engine:        engine,
		prices:        prices,
		stock:         stock,
		alerts:        alerts,
		riders:        riders,
		notifications: notifications,
		logg:          logg,
		verification:  verification,
		payout:        payout,
		now:           time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*SellRequestView, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	if reason := input.Device.Validate(); reason != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, reason)
	}
	if input.PickupAddress.Line1 == "" || input.PickupAddress.City == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup address is incomplete")
	}

	marketPrice, err := s.prices.MarketPriceCents(ctx, input.Device.Brand, input.Device.Model, input.Device.StorageGB)
	if err != nil {
		return nil, err
	}
	basePrice, err := s.engine.ComputeBasePrice(marketPrice, input.Device.PurchaseYear, input.Device.Condition, s.now())
	if err != nil {
		return nil, err
	}

	req := &models.SellRequest{
		SellerID:       input.SellerID,
		SellerName:     input.SellerName,
		SellerPhone:    input.SellerPhone,
		Device:         input.Device,
		PickupAddress:  input.PickupAddress,
		Status:         enums.WorkflowStatusCreated,
		BasePriceCents: basePrice,
		SellerDecision: enums.SellerDecisionPending,
		PayoutStatus:   enums.PayoutStatusPending,
		BankDetails:    input.BankDetails,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, req); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sell request")
		}
		entry := &models.StatusHistory{
			SellRequestID: req.ID,
			Status:        enums.WorkflowStatusCreated,
			ChangedBy:     enums.ActorRoleSeller,
			Note:          "request submitted",
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestCreated,
			AggregateType: enums.AggregateSellRequest,
			AggregateID:   req.ID,
			Version:       1,
			Actor:         buildActor(input.SellerID, enums.ActorRoleSeller),
			Data: RequestStatusEvent{
				RequestID: req.ID,
				SellerID:  req.SellerID,
				Status:    req.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return NewSellRequestView(req), nil
}

func (s *service) UpdateBankDetails(ctx context.Context, input BankDetailsInput) (*SellRequestView, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	if !input.Details.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bank details are incomplete")
	}

	var req *models.SellRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadForUpdate(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if loaded.SellerID != input.SellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "request does not belong to seller")
		}
		if loaded.BankDetailsLocked {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bank details are locked after approval")
		}
		details := input.Details
		loaded.BankDetails = &details
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save bank details")
		}
		req = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewSellRequestView(req), nil
}

func (s *service) Approval(ctx context.Context, input ApprovalInput) (*SellRequestView, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if input.Decision != ApprovalDecisionApprove && input.Decision != ApprovalDecisionReject {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}

	var req *models.SellRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadForUpdate(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if loaded.PayoutStatus == enums.PayoutStatusPaid {
			return pkgerrors.New(pkgerrors.CodeConflict, "payout already settled")
		}
		if loaded.Status != enums.WorkflowStatusCreated {
			return pkgerrors.New(pkgerrors.CodeConflict, "approval already decided")
		}

		target := enums.WorkflowStatusAdminApproved
		note := input.Note
		eventType := enums.EventRequestApproved
		if input.Decision == ApprovalDecisionReject {
			target = enums.WorkflowStatusCancelled
			eventType = enums.EventRequestCancelled
			if note == "" {
				note = "rejected by admin"
			}
		} else if note == "" {
			note = "approved by admin"
		}
		if target == enums.WorkflowStatusAdminApproved && !s.bankDetailsSatisfied(loaded) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bank details must be on file before approval")
		}

		entry, err := workflow.Apply(loaded, target, enums.ActorRoleAdmin, note)
		if err != nil {
			return err
		}
		if target == enums.WorkflowStatusAdminApproved {
			// destination cannot change once an admin signed off on it
			loaded.BankDetailsLocked = true
		}
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save approval decision")
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
		}
		req = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateSellRequest,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         buildActor(input.AdminID, enums.ActorRoleAdmin),
			Data: RequestStatusEvent{
				RequestID: loaded.ID,
				SellerID:  loaded.SellerID,
				Status:    loaded.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if req.Status == enums.WorkflowStatusAdminApproved {
		s.push(ctx, models.Notification{
			UserID:  req.SellerID,
			Type:    enums.NotificationTypeRequestApproved,
			Title:   "Request approved",
			Message: "Your trade-in request was approved and will be scheduled for pickup.",
		})
	} else {
		s.push(ctx, models.Notification{
			UserID:  req.SellerID,
			Type:    enums.NotificationTypeRequestCancelled,
			Title:   "Request rejected",
			Message: "Your trade-in request was rejected by our team.",
		})
	}
	return NewSellRequestView(req), nil
}

func (s *service) AssignRider(ctx context.Context, input AssignRiderInput) (*SellRequestView, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if input.RiderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rider id required")
	}
	if !input.PickupScheduledAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup must be scheduled in the future")
	}

	rider, err := s.riders.FindRider(ctx, input.RiderID)
	if err != nil {
		return nil, err
	}
	if rider == nil || rider.Role != enums.ActorRoleRider || !rider.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rider is not available for assignment")
	}

	var req *models.SellRequest
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadForUpdate(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}

		note := "rider assigned"
		if loaded.Status == enums.WorkflowStatusAssignedToRider {
			note = "rider reassigned"
		} else if loaded.Status == enums.WorkflowStatusRejectedByRider {
			note = "rider reassigned after rejection"
		}

		entry, err := workflow.Apply(loaded, enums.WorkflowStatusAssignedToRider, enums.ActorRoleAdmin, note)
		if err != nil {
			return err
		}
		assignedAt := s.now()
		loaded.AssignedRiderID = &input.RiderID
		loaded.RiderAssignedAt = &assignedAt
		loaded.PickupScheduledAt = &input.PickupScheduledAt
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save rider assignment")
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
		}
		req = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRiderAssigned,
			AggregateType: enums.AggregateSellRequest,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         buildActor(input.AdminID, enums.ActorRoleAdmin),
			Data: RiderAssignedEvent{
				RequestID:         loaded.ID,
				RiderID:           input.RiderID,
				PickupScheduledAt: input.PickupScheduledAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.push(ctx, models.Notification{
		UserID:  req.SellerID,
		Type:    enums.NotificationTypePickupScheduled,
		Title:   "Pickup scheduled",
		Message: fmt.Sprintf("A rider will pick up your device on %s.", input.PickupScheduledAt.Format("Jan 2, 3:04 PM")),
	})
	return NewSellRequestView(req), nil
}

func (s *service) AttachEvidence(ctx context.Context, input AttachEvidenceInput) (*SellRequestView, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.RiderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "rider identity missing")
	}
	if len(input.ImageKeys) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one image key required")
	}

	var req *models.SellRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadForUpdate(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if err := requireAssignedRider(loaded, input.RiderID); err != nil {
			return err
		}
		if loaded.Status != enums.WorkflowStatusAssignedToRider {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "evidence can only be attached before verification")
		}
		loaded.EvidenceImageKeys = append(loaded.EvidenceImageKeys, input.ImageKeys...)
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save evidence")
		}
		req = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewSellRequestView(req), nil
}

func (s *service) Verify(ctx context.Context, input VerifyInput) (*SellRequestView, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.RiderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "rider identity missing")
	}
	for _, check := range enums.AllDefectChecks() {
		if _, ok := input.Checks[check]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("missing check %q", check))
		}
	}
	for check := range input.Checks {
		if !check.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown check %q", check))
		}
	}

	passed, failed := 0, 0
	for _, ok := range input.Checks {
		if ok {
			passed++
		} else {
			failed++
		}
	}

	var req *models.SellRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadForUpdate(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if err := requireAssignedRider(loaded, input.RiderID); err != nil {
			return err
		}
		if loaded.Status != enums.WorkflowStatusAssignedToRider {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request is not awaiting verification")
		}
		if len(loaded.EvidenceImageKeys) < s.verification.MinEvidenceImages {
			return pkgerrors.New(
				pkgerrors.CodeValidation,
				fmt.Sprintf("at least %d verification images required", s.verification.MinEvidenceImages),
			)
		}

		switch {
		case failed == 0:
			if err := s.acceptVerification(ctx, tx, repo, loaded, input); err != nil {
				return err
			}
		case passed == 0:
			if err := s.autoReject(ctx, tx, repo, loaded, input.RiderID); err != nil {
				return err
			}
		default:
			return pkgerrors.New(
				pkgerrors.CodeStateConflict,
				"mixed check results are not accepted; use the explicit reject path",
			)
		}
		req = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Status == enums.WorkflowStatusUnderVerification {
		s.push(ctx, models.Notification{
			UserID:  req.SellerID,
			Type:    enums.NotificationTypeFinalPriceReady,
			Title:   "Final price ready",
			Message: "Your device passed verification. Review and accept the final price.",
		})
	}
	return NewSellRequestView(req), nil
}

func (s *service) acceptVerification(ctx context.Context, tx *gorm.DB, repo Repository, req *models.SellRequest, input VerifyInput) error {
	failedChecks := make([]enums.DefectCheck, 0)
	for check, ok := range input.Checks {
		if !ok {
			failedChecks = append(failedChecks, check)
		}
	}
	finalPrice, deductions, totalDeduction := s.engine.ComputeFinalPrice(req.BasePriceCents, failedChecks)

	entry, err := workflow.Apply(req, enums.WorkflowStatusUnderVerification, enums.ActorRoleRider, "device verified")
	if err != nil {
		return err
	}
	req.Verification = &types.VerificationReport{
		Checks:              input.Checks,
		Deductions:          deductions,
		TotalDeductionCents: totalDeduction,
		FinalPriceCents:     finalPrice,
		VerifiedBy:          input.RiderID,
		VerifiedAt:          s.now(),
	}
	if err := repo.Save(ctx, req); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save verification")
	}
	if err := repo.AppendHistory(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventFinalPriceReady,
		AggregateType: enums.AggregateSellRequest,
		AggregateID:   req.ID,
		Version:       1,
		Actor:         buildActor(input.RiderID, enums.ActorRoleRider),
		Data: FinalPriceReadyEvent{
			RequestID:           req.ID,
			SellerID:            req.SellerID,
			BasePriceCents:      req.BasePriceCents,
			TotalDeductionCents: totalDeduction,
			FinalPriceCents:     finalPrice,
		},
	})
}

func (s *service) autoReject(ctx context.Context, tx *gorm.DB, repo Repository, req *models.SellRequest, riderID uuid.UUID) error {
	entry, err := workflow.Apply(req, enums.WorkflowStatusRejectedByRider, enums.ActorRoleRider, "all checks failed")
	if err != nil {
		return err
	}
	if err := repo.Save(ctx, req); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save auto rejection")
	}
	if err := repo.AppendHistory(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
	}
	alert := models.AdminAlert{
		Type:          enums.AlertTypeAutoRejection,
		Severity:      enums.AlertSeverityCritical,
		SellRequestID: req.ID,
		Message:       "device auto-rejected: every doorstep check failed",
	}
	if err := s.alerts.Raise(ctx, tx, alert); err != nil {
		return err
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventRequestRejected,
		AggregateType: enums.AggregateSellRequest,
		AggregateID:   req.ID,
		Version:       1,
		Actor:         buildActor(riderID, enums.ActorRoleRider),
		Data: RequestStatusEvent{
			RequestID: req.ID,
			SellerID:  req.SellerID,
			Status:    req.Status,
		},
	})
}

func (s *service) RiderReject(ctx context.Context, input RiderRejectInput) (*SellRequestView, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.RiderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "rider identity missing")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	var req *models.SellRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadForUpdate(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if err := requireAssignedRider(loaded, input.RiderID); err != nil {
			return err
		}

		entry, err := workflow.Apply(loaded, enums.WorkflowStatusRejectedByRider, enums.ActorRoleRider, input.Reason)
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save rider rejection")
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
		}
		alert := models.AdminAlert{
			Type:          enums.AlertTypeRiderRejection,
			Severity:      enums.AlertSeverityWarning,
			SellRequestID: loaded.ID,
			Message:       fmt.Sprintf("rider rejected device: %s", input.Reason),
		}
		if err := s.alerts.Raise(ctx, tx, alert); err != nil {
			return err
		}
		req = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestRejected,
			AggregateType: enums.AggregateSellRequest,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         buildActor(input.RiderID, enums.ActorRoleRider),
			Data: RequestStatusEvent{
				RequestID: loaded.ID,
				SellerID:  loaded.SellerID,
				Status:    loaded.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return NewSellRequestView(req), nil
}

func (s *service) SellerDecision(ctx context.Context, input SellerDecisionInput) (*SellRequestView, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}

	var req *models.SellRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadForUpdate(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if loaded.SellerID != input.SellerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "request does not belong to seller")
		}
		if loaded.SellerDecision.Decided() {
			return pkgerrors.New(pkgerrors.CodeConflict, "price decision already submitted")
		}
		if loaded.Status != enums.WorkflowStatusUnderVerification {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request is not awaiting a price decision")
		}

		target := enums.WorkflowStatusUserAccepted
		decision := enums.SellerDecisionAccepted
		note := "seller accepted final price"
		if !input.Accept {
			target = enums.WorkflowStatusCancelled
			decision = enums.SellerDecisionRejected
			note = "seller rejected final price"
		}

		entry, err := workflow.Apply(loaded, target, enums.ActorRoleSeller, note)
		if err != nil {
			return err
		}
		loaded.SellerDecision = decision
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save seller decision")
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
		}
		req = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventSellerDecided,
			AggregateType: enums.AggregateSellRequest,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         buildActor(input.SellerID, enums.ActorRoleSeller),
			Data: RequestStatusEvent{
				RequestID: loaded.ID,
				SellerID:  loaded.SellerID,
				Status:    loaded.Status,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return NewSellRequestView(req), nil
}

func (s *service) CompletePickup(ctx context.Context, input CompletePickupInput) (*SellRequestView, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.RiderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "rider identity missing")
	}

	var req *models.SellRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadForUpdate(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if err := requireAssignedRider(loaded, input.RiderID); err != nil {
			return err
		}

		entry, err := workflow.Apply(loaded, enums.WorkflowStatusCompleted, enums.ActorRoleRider, "pickup completed")
		if err != nil {
			return err
		}

		finalPrice := loaded.FinalPriceCents()
		item := models.StockItem{
			SellRequestID:      loaded.ID,
			Device:             loaded.Device,
			PurchasePriceCents: finalPrice,
			Status:             enums.StockStatusDraft,
		}
		if err := s.stock.Upsert(ctx, tx, item); err != nil {
			return err
		}

		payout := s.engine.RiderPayoutCents()
		paidAt := s.now()
		loaded.RiderPayoutCents = &payout
		loaded.RiderPayoutAt = &paidAt
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save completion")
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
		}
		req = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRequestCompleted,
			AggregateType: enums.AggregateSellRequest,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         buildActor(input.RiderID, enums.ActorRoleRider),
			Data: RequestCompletedEvent{
				RequestID:          loaded.ID,
				SellerID:           loaded.SellerID,
				PurchasePriceCents: finalPrice,
				RiderPayoutCents:   payout,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return NewSellRequestView(req), nil
}

func (s *service) SettlePayout(ctx context.Context, input SettlePayoutInput) (*SellRequestView, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if input.TxRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference required")
	}

	var req *models.SellRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadForUpdate(ctx, repo, input.RequestID)
		if err != nil {
			return err
		}
		if loaded.PayoutStatus == enums.PayoutStatusPaid {
			return pkgerrors.New(pkgerrors.CodeConflict, "payout already settled")
		}
		if loaded.Status != enums.WorkflowStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payout requires a completed request")
		}
		if loaded.SellerDecision != enums.SellerDecisionAccepted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payout requires seller acceptance")
		}
		if !s.bankDetailsSatisfied(loaded) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payout requires complete bank details")
		}

		paidAt := s.now()
		txRef := input.TxRef
		loaded.PayoutStatus = enums.PayoutStatusPaid
		loaded.PayoutTxRef = &txRef
		loaded.PaidAt = &paidAt
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payout")
		}
		entry := &models.StatusHistory{
			SellRequestID: loaded.ID,
			Status:        loaded.Status,
			ChangedBy:     enums.ActorRoleAdmin,
			Note:          fmt.Sprintf("payout settled (ref %s)", txRef),
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append history")
		}
		req = loaded
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutSettled,
			AggregateType: enums.AggregateSellRequest,
			AggregateID:   loaded.ID,
			Version:       1,
			Actor:         buildActor(input.AdminID, enums.ActorRoleAdmin),
			Data: PayoutSettledEvent{
				RequestID: loaded.ID,
				SellerID:  loaded.SellerID,
				TxRef:     txRef,
				PaidCents: loaded.FinalPriceCents(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.push(ctx, models.Notification{
		UserID:  req.SellerID,
		Type:    enums.NotificationTypePayoutSettled,
		Title:   "Payout sent",
		Message: "Your trade-in payout has been transferred to your bank account.",
	})
	return NewSellRequestView(req), nil
}

func (s *service) Get(ctx context.Context, requestID, actorID uuid.UUID, role enums.ActorRole) (*SellRequestView, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	req, err := s.repo.Find(ctx, requestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}

	switch role {
	case enums.ActorRoleAdmin, enums.ActorRoleSystem:
	case enums.ActorRoleSeller:
		if req.SellerID != actorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request does not belong to seller")
		}
	case enums.ActorRoleRider:
		if req.AssignedRiderID == nil || *req.AssignedRiderID != actorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request is not assigned to rider")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}
	return NewSellRequestView(req), nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*SellRequestList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	list, err := s.repo.ListBySeller(ctx, sellerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller requests")
	}
	return list, nil
}

func (s *service) ListByRider(ctx context.Context, riderID uuid.UUID, params pagination.Params) (*SellRequestList, error) {
	if riderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "rider identity missing")
	}
	list, err := s.repo.ListByRider(ctx, riderID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rider requests")
	}
	return list, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*SellRequestList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}
	return list, nil
}

func (s *service) loadForUpdate(ctx context.Context, repo Repository, id uuid.UUID) (*models.SellRequest, error) {
	req, err := repo.FindForUpdate(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	return req, nil
}

// bankDetailsSatisfied applies the legacy exemption: requests created before
// the cutover predate the bank-details requirement and may be approved and
// settled without one.
func (s *service) bankDetailsSatisfied(req *models.SellRequest) bool {
	if req.BankDetails != nil && req.BankDetails.Complete() {
		return true
	}
	return req.CreatedAt.Before(s.payout.BankDetailsCutover)
}

// push delivers a best-effort notification intent. Failures are logged and
// never affect the caller-visible result.
func (s *service) push(ctx context.Context, notification models.Notification) {
	if err := s.notifications.Push(ctx, notification); err != nil {
		logCtx := s.logg.WithField(ctx, "user_id", notification.UserID.String())
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "notification delivery failed")
	}
}

func requireAssignedRider(req *models.SellRequest, riderID uuid.UUID) error {
	if req.AssignedRiderID == nil || *req.AssignedRiderID != riderID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "request is not assigned to rider")
	}
	return nil
}

func buildActor(userID uuid.UUID, role enums.ActorRole) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: userID, Role: role}
}
