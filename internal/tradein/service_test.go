package tradein

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cellflip/cellflip-backend/internal/pricing"
	"github.com/cellflip/cellflip-backend/pkg/config"
	"github.com/cellflip/cellflip-backend/pkg/db/models"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/logger"
	"github.com/cellflip/cellflip-backend/pkg/outbox"
	"github.com/cellflip/cellflip-backend/pkg/pagination"
	"github.com/cellflip/cellflip-backend/pkg/types"
)

var testNow = time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)

func TestCreateValuesDeviceAndRecordsHistory(t *testing.T) {
	h := newHarness(t)
	h.prices.price = 20000

	sellerID := uuid.New()
	view, err := h.svc.Create(context.Background(), CreateInput{
		SellerID:    sellerID,
		SellerName:  "Asha",
		SellerPhone: "+15550001111",
		Device: types.DeviceSpec{
			Brand:        "Samsung",
			Model:        "Galaxy S23",
			StorageGB:    256,
			Condition:    enums.DeviceConditionGood,
			PurchaseYear: 2023,
		},
		PickupAddress: types.PickupAddress{Line1: "12 Hill Rd", City: "Pune"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 20000 * (1 - 0.30) * 0.90
	if view.BasePriceCents != 12600 {
		t.Fatalf("expected base price 12600, got %d", view.BasePriceCents)
	}
	if view.Status != enums.WorkflowStatusCreated {
		t.Fatalf("expected created status, got %s", view.Status)
	}

	stored := h.repo.mustGet(t, view.ID)
	if len(h.repo.history[stored.ID]) != 1 {
		t.Fatalf("expected one history row, got %d", len(h.repo.history[stored.ID]))
	}
	h.outbox.assertEmitted(t, enums.EventRequestCreated)
}

func TestCreateRejectsUnknownDevice(t *testing.T) {
	h := newHarness(t)
	h.prices.err = pkgerrors.New(pkgerrors.CodeValidation, "device is not in the trade-in catalog")

	_, err := h.svc.Create(context.Background(), CreateInput{
		SellerID:    uuid.New(),
		SellerName:  "Asha",
		SellerPhone: "+15550001111",
		Device: types.DeviceSpec{
			Brand:        "Nokia",
			Model:        "3310",
			StorageGB:    1,
			Condition:    enums.DeviceConditionFair,
			PurchaseYear: 2020,
		},
		PickupAddress: types.PickupAddress{Line1: "12 Hill Rd", City: "Pune"},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestApprovalLocksBankDetailsAndIsSingleUse(t *testing.T) {
	h := newHarness(t)
	req := h.seedRequest(enums.WorkflowStatusCreated)
	adminID := uuid.New()

	view, err := h.svc.Approval(context.Background(), ApprovalInput{
		RequestID: req.ID,
		AdminID:   adminID,
		Decision:  ApprovalDecisionApprove,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if view.Status != enums.WorkflowStatusAdminApproved {
		t.Fatalf("expected admin_approved, got %s", view.Status)
	}
	if !h.repo.mustGet(t, req.ID).BankDetailsLocked {
		t.Fatalf("expected bank details to be locked after approval")
	}
	if len(h.sink.pushed) != 1 || h.sink.pushed[0].Type != enums.NotificationTypeRequestApproved {
		t.Fatalf("expected one approval notification, got %v", h.sink.pushed)
	}

	_, err = h.svc.Approval(context.Background(), ApprovalInput{
		RequestID: req.ID,
		AdminID:   adminID,
		Decision:  ApprovalDecisionApprove,
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestApprovalRejectCancels(t *testing.T) {
	h := newHarness(t)
	req := h.seedRequest(enums.WorkflowStatusCreated)

	view, err := h.svc.Approval(context.Background(), ApprovalInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		Decision:  ApprovalDecisionReject,
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if view.Status != enums.WorkflowStatusCancelled {
		t.Fatalf("expected cancelled, got %s", view.Status)
	}
	h.outbox.assertEmitted(t, enums.EventRequestCancelled)
}

func TestApprovalRequiresBankDetails(t *testing.T) {
	h := newHarness(t)
	req := h.seedRequest(enums.WorkflowStatusCreated)
	req.BankDetails = nil
	req.CreatedAt = h.payoutCutover.Add(time.Hour)
	h.repo.put(req)

	_, err := h.svc.Approval(context.Background(), ApprovalInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		Decision:  ApprovalDecisionApprove,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	stored := h.repo.mustGet(t, req.ID)
	if stored.Status != enums.WorkflowStatusCreated {
		t.Fatalf("expected status to stay created, got %s", stored.Status)
	}
	if stored.BankDetailsLocked {
		t.Fatalf("expected bank details to stay unlocked after refused approval")
	}
}

func TestApprovalGrandfathersOldRequests(t *testing.T) {
	h := newHarness(t)
	req := h.seedRequest(enums.WorkflowStatusCreated)
	req.BankDetails = nil
	req.CreatedAt = h.payoutCutover.Add(-time.Hour)
	h.repo.put(req)

	view, err := h.svc.Approval(context.Background(), ApprovalInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		Decision:  ApprovalDecisionApprove,
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if view.Status != enums.WorkflowStatusAdminApproved {
		t.Fatalf("expected admin_approved, got %s", view.Status)
	}
}

func TestApprovalRejectNeedsNoBankDetails(t *testing.T) {
	h := newHarness(t)
	req := h.seedRequest(enums.WorkflowStatusCreated)
	req.BankDetails = nil
	req.CreatedAt = h.payoutCutover.Add(time.Hour)
	h.repo.put(req)

	view, err := h.svc.Approval(context.Background(), ApprovalInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		Decision:  ApprovalDecisionReject,
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if view.Status != enums.WorkflowStatusCancelled {
		t.Fatalf("expected cancelled, got %s", view.Status)
	}
}

func TestApprovalRefusedAfterPayoutSettled(t *testing.T) {
	h := newHarness(t)
	req := h.seedRequest(enums.WorkflowStatusCreated)
	req.PayoutStatus = enums.PayoutStatusPaid
	h.repo.put(req)

	_, err := h.svc.Approval(context.Background(), ApprovalInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		Decision:  ApprovalDecisionApprove,
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdateBankDetailsRefusedAfterLock(t *testing.T) {
	h := newHarness(t)
	req := h.seedRequest(enums.WorkflowStatusAdminApproved)
	req.BankDetailsLocked = true
	h.repo.put(req)

	_, err := h.svc.UpdateBankDetails(context.Background(), BankDetailsInput{
		RequestID: req.ID,
		SellerID:  req.SellerID,
		Details: types.BankDetails{
			AccountHolder: "Asha",
			AccountNumber: "1234567890",
			BankName:      "First Bank",
		},
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAssignRiderValidatesScheduleAndRole(t *testing.T) {
	h := newHarness(t)
	req := h.seedRequest(enums.WorkflowStatusAdminApproved)

	_, err := h.svc.AssignRider(context.Background(), AssignRiderInput{
		RequestID:         req.ID,
		AdminID:           uuid.New(),
		RiderID:           h.riderID,
		PickupScheduledAt: testNow.Add(-time.Hour),
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	stranger := uuid.New()
	h.riders.users[stranger] = &models.User{ID: stranger, Role: enums.ActorRoleSeller, IsActive: true}
	_, err = h.svc.AssignRider(context.Background(), AssignRiderInput{
		RequestID:         req.ID,
		AdminID:           uuid.New(),
		RiderID:           stranger,
		PickupScheduledAt: testNow.Add(24 * time.Hour),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestAssignRiderSchedulesPickup(t *testing.T) {
	h := newHarness(t)
	req := h.seedRequest(enums.WorkflowStatusAdminApproved)
	slot := testNow.Add(24 * time.Hour)

	view, err := h.svc.AssignRider(context.Background(), AssignRiderInput{
		RequestID:         req.ID,
		AdminID:           uuid.New(),
		RiderID:           h.riderID,
		PickupScheduledAt: slot,
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if view.Status != enums.WorkflowStatusAssignedToRider {
		t.Fatalf("expected assigned_to_rider, got %s", view.Status)
	}
	if view.AssignedRiderID == nil || *view.AssignedRiderID != h.riderID {
		t.Fatalf("expected rider to be recorded")
	}
	if view.PickupScheduledAt == nil || !view.PickupScheduledAt.Equal(slot) {
		t.Fatalf("expected pickup slot %v, got %v", slot, view.PickupScheduledAt)
	}
	h.outbox.assertEmitted(t, enums.EventRiderAssigned)
}

func TestReassignAfterRejectionRecovers(t *testing.T) {
	h := newHarness(t)
	req := h.seedAssigned()
	req.Status = enums.WorkflowStatusRejectedByRider
	h.repo.put(req)

	replacement := uuid.New()
	h.riders.users[replacement] = &models.User{ID: replacement, Role: enums.ActorRoleRider, IsActive: true}

	view, err := h.svc.AssignRider(context.Background(), AssignRiderInput{
		RequestID:         req.ID,
		AdminID:           uuid.New(),
		RiderID:           replacement,
		PickupScheduledAt: testNow.Add(48 * time.Hour),
	})
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if view.Status != enums.WorkflowStatusAssignedToRider {
		t.Fatalf("expected assigned_to_rider, got %s", view.Status)
	}
	if *view.AssignedRiderID != replacement {
		t.Fatalf("expected replacement rider to be recorded")
	}
}

func TestVerifyAllPassProducesFinalPrice(t *testing.T) {
	h := newHarness(t)
	req := h.seedAssigned()
	req.EvidenceImageKeys = []string{"a.jpg", "b.jpg", "c.jpg"}
	h.repo.put(req)

	view, err := h.svc.Verify(context.Background(), VerifyInput{
		RequestID: req.ID,
		RiderID:   h.riderID,
		Checks:    checkSheet(nil),
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if view.Status != enums.WorkflowStatusUnderVerification {
		t.Fatalf("expected under_verification, got %s", view.Status)
	}
	if view.Verification == nil {
		t.Fatalf("expected verification report")
	}
	if view.Verification.FinalPriceCents != req.BasePriceCents {
		t.Fatalf("expected final price %d with no deductions, got %d", req.BasePriceCents, view.Verification.FinalPriceCents)
	}
	if len(h.sink.pushed) != 1 || h.sink.pushed[0].Type != enums.NotificationTypeFinalPriceReady {
		t.Fatalf("expected final price notification, got %v", h.sink.pushed)
	}
	h.outbox.assertEmitted(t, enums.EventFinalPriceReady)
}

func TestVerifyRefusesMixedSheet(t *testing.T) {
	h := newHarness(t)
	req := h.seedAssigned()
	req.EvidenceImageKeys = []string{"a.jpg", "b.jpg", "c.jpg"}
	h.repo.put(req)

	_, err := h.svc.Verify(context.Background(), VerifyInput{
		RequestID: req.ID,
		RiderID:   h.riderID,
		Checks:    checkSheet([]enums.DefectCheck{enums.DefectCheckScreenCrack}),
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	if h.repo.mustGet(t, req.ID).Status != enums.WorkflowStatusAssignedToRider {
		t.Fatalf("expected state to be untouched after mixed sheet")
	}
	if len(h.alerts.raised) != 0 {
		t.Fatalf("expected no alert for a mixed sheet")
	}
}

func TestVerifyAllFailAutoRejects(t *testing.T) {
	h := newHarness(t)
	req := h.seedAssigned()
	req.EvidenceImageKeys = []string{"a.jpg", "b.jpg", "c.jpg"}
	h.repo.put(req)

	view, err := h.svc.Verify(context.Background(), VerifyInput{
		RequestID: req.ID,
		RiderID:   h.riderID,
		Checks:    checkSheet(enums.AllDefectChecks()),
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if view.Status != enums.WorkflowStatusRejectedByRider {
		t.Fatalf("expected rejected_by_rider, got %s", view.Status)
	}
	if view.Verification != nil {
		t.Fatalf("expected no final price for an auto-rejected device")
	}
	if len(h.alerts.raised) != 1 || h.alerts.raised[0].Type != enums.AlertTypeAutoRejection {
		t.Fatalf("expected one auto rejection alert, got %v", h.alerts.raised)
	}
	if h.alerts.raised[0].Severity != enums.AlertSeverityCritical {
		t.Fatalf("expected critical severity, got %s", h.alerts.raised[0].Severity)
	}
	if len(h.sink.pushed) != 0 {
		t.Fatalf("expected no seller notification on auto rejection")
	}
}

func TestVerifyRequiresEvidence(t *testing.T) {
	h := newHarness(t)
	req := h.seedAssigned()
	req.EvidenceImageKeys = []string{"a.jpg", "b.jpg"}
	h.repo.put(req)

	_, err := h.svc.Verify(context.Background(), VerifyInput{
		RequestID: req.ID,
		RiderID:   h.riderID,
		Checks:    checkSheet(nil),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestVerifyRequiresAssignedRider(t *testing.T) {
	h := newHarness(t)
	req := h.seedAssigned()
	req.EvidenceImageKeys = []string{"a.jpg", "b.jpg", "c.jpg"}
	h.repo.put(req)

	_, err := h.svc.Verify(context.Background(), VerifyInput{
		RequestID: req.ID,
		RiderID:   uuid.New(),
		Checks:    checkSheet(nil),
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestVerifyRequiresCompleteSheet(t *testing.T) {
	h := newHarness(t)
	req := h.seedAssigned()

	sheet := checkSheet(nil)
	delete(sheet, enums.DefectCheckCameraFault)
	_, err := h.svc.Verify(context.Background(), VerifyInput{
		RequestID: req.ID,
		RiderID:   h.riderID,
		Checks:    sheet,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRiderRejectRaisesAlert(t *testing.T) {
	h := newHarness(t)
	req := h.seedAssigned()

	view, err := h.svc.RiderReject(context.Background(), RiderRejectInput{
		RequestID: req.ID,
		RiderID:   h.riderID,
		Reason:    "device does not match the listing",
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if view.Status != enums.WorkflowStatusRejectedByRider {
		t.Fatalf("expected rejected_by_rider, got %s", view.Status)
	}
	if len(h.alerts.raised) != 1 || h.alerts.raised[0].Type != enums.AlertTypeRiderRejection {
		t.Fatalf("expected one rider rejection alert, got %v", h.alerts.raised)
	}
	if h.alerts.raised[0].Severity != enums.AlertSeverityWarning {
		t.Fatalf("expected warning severity, got %s", h.alerts.raised[0].Severity)
	}
}

func TestSellerDecisionIsSingleUse(t *testing.T) {
	h := newHarness(t)
	req := h.seedVerified()

	view, err := h.svc.SellerDecision(context.Background(), SellerDecisionInput{
		RequestID: req.ID,
		SellerID:  req.SellerID,
		Accept:    true,
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if view.Status != enums.WorkflowStatusUserAccepted {
		t.Fatalf("expected user_accepted, got %s", view.Status)
	}
	if view.SellerDecision != enums.SellerDecisionAccepted {
		t.Fatalf("expected accepted decision, got %s", view.SellerDecision)
	}

	_, err = h.svc.SellerDecision(context.Background(), SellerDecisionInput{
		RequestID: req.ID,
		SellerID:  req.SellerID,
		Accept:    false,
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestSellerDecisionRejectCancels(t *testing.T) {
	h := newHarness(t)
	req := h.seedVerified()

	view, err := h.svc.SellerDecision(context.Background(), SellerDecisionInput{
		RequestID: req.ID,
		SellerID:  req.SellerID,
		Accept:    false,
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if view.Status != enums.WorkflowStatusCancelled {
		t.Fatalf("expected cancelled, got %s", view.Status)
	}
}

func TestSellerDecisionRequiresOwner(t *testing.T) {
	h := newHarness(t)
	req := h.seedVerified()

	_, err := h.svc.SellerDecision(context.Background(), SellerDecisionInput{
		RequestID: req.ID,
		SellerID:  uuid.New(),
		Accept:    true,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCompletePickupStocksDeviceAndPaysRider(t *testing.T) {
	h := newHarness(t)
	req := h.seedAccepted()

	view, err := h.svc.CompletePickup(context.Background(), CompletePickupInput{
		RequestID: req.ID,
		RiderID:   h.riderID,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if view.Status != enums.WorkflowStatusCompleted {
		t.Fatalf("expected completed, got %s", view.Status)
	}
	if len(h.stock.items) != 1 {
		t.Fatalf("expected one stock item, got %d", len(h.stock.items))
	}
	item := h.stock.items[req.ID]
	if item.PurchasePriceCents != req.Verification.FinalPriceCents {
		t.Fatalf("expected purchase price %d, got %d", req.Verification.FinalPriceCents, item.PurchasePriceCents)
	}
	if item.Status != enums.StockStatusDraft {
		t.Fatalf("expected draft stock status, got %s", item.Status)
	}
	if view.RiderPayoutCents == nil || *view.RiderPayoutCents != 2500 {
		t.Fatalf("expected rider payout 2500, got %v", view.RiderPayoutCents)
	}
	h.outbox.assertEmitted(t, enums.EventRequestCompleted)
}

func TestCompletePickupIsNotRepeatable(t *testing.T) {
	h := newHarness(t)
	req := h.seedAccepted()

	if _, err := h.svc.CompletePickup(context.Background(), CompletePickupInput{
		RequestID: req.ID,
		RiderID:   h.riderID,
	}); err != nil {
		t.Fatalf("first completion: %v", err)
	}

	_, err := h.svc.CompletePickup(context.Background(), CompletePickupInput{
		RequestID: req.ID,
		RiderID:   h.riderID,
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
	if len(h.stock.items) != 1 {
		t.Fatalf("expected stock to stay at one item, got %d", len(h.stock.items))
	}
}

func TestSettlePayoutRequiresSellerAcceptance(t *testing.T) {
	h := newHarness(t)
	req := h.seedAccepted()
	req.Status = enums.WorkflowStatusCompleted
	req.SellerDecision = enums.SellerDecisionPending
	h.repo.put(req)

	_, err := h.svc.SettlePayout(context.Background(), SettlePayoutInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		TxRef:     "TX-100",
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestSettlePayoutRequiresBankDetails(t *testing.T) {
	h := newHarness(t)
	req := h.seedAccepted()
	req.Status = enums.WorkflowStatusCompleted
	req.BankDetails = nil
	req.CreatedAt = h.payoutCutover.Add(time.Hour)
	h.repo.put(req)

	_, err := h.svc.SettlePayout(context.Background(), SettlePayoutInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		TxRef:     "TX-100",
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestSettlePayoutGrandfathersOldRequests(t *testing.T) {
	h := newHarness(t)
	req := h.seedAccepted()
	req.Status = enums.WorkflowStatusCompleted
	req.BankDetails = nil
	req.CreatedAt = h.payoutCutover.Add(-time.Hour)
	h.repo.put(req)

	view, err := h.svc.SettlePayout(context.Background(), SettlePayoutInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		TxRef:     "TX-100",
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if view.PayoutStatus != enums.PayoutStatusPaid {
		t.Fatalf("expected paid, got %s", view.PayoutStatus)
	}
	if view.PayoutTxRef == nil || *view.PayoutTxRef != "TX-100" {
		t.Fatalf("expected tx ref to be recorded")
	}
}

func TestSettlePayoutIsSingleUse(t *testing.T) {
	h := newHarness(t)
	req := h.seedAccepted()
	req.Status = enums.WorkflowStatusCompleted
	h.repo.put(req)

	if _, err := h.svc.SettlePayout(context.Background(), SettlePayoutInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		TxRef:     "TX-100",
	}); err != nil {
		t.Fatalf("first settle: %v", err)
	}

	_, err := h.svc.SettlePayout(context.Background(), SettlePayoutInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		TxRef:     "TX-101",
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestGetEnforcesActorAccess(t *testing.T) {
	h := newHarness(t)
	req := h.seedAssigned()

	if _, err := h.svc.Get(context.Background(), req.ID, req.SellerID, enums.ActorRoleSeller); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := h.svc.Get(context.Background(), req.ID, h.riderID, enums.ActorRoleRider); err != nil {
		t.Fatalf("assigned rider get: %v", err)
	}
	if _, err := h.svc.Get(context.Background(), req.ID, uuid.New(), enums.ActorRoleAdmin); err != nil {
		t.Fatalf("admin get: %v", err)
	}

	_, err := h.svc.Get(context.Background(), req.ID, uuid.New(), enums.ActorRoleSeller)
	assertCode(t, err, pkgerrors.CodeForbidden)
	_, err = h.svc.Get(context.Background(), req.ID, uuid.New(), enums.ActorRoleRider)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestNotificationFailureDoesNotFailOperation(t *testing.T) {
	h := newHarness(t)
	h.sink.err = pkgerrors.New(pkgerrors.CodeDependency, "sink offline")
	req := h.seedRequest(enums.WorkflowStatusCreated)

	view, err := h.svc.Approval(context.Background(), ApprovalInput{
		RequestID: req.ID,
		AdminID:   uuid.New(),
		Decision:  ApprovalDecisionApprove,
	})
	if err != nil {
		t.Fatalf("approve despite sink failure: %v", err)
	}
	if view.Status != enums.WorkflowStatusAdminApproved {
		t.Fatalf("expected admin_approved, got %s", view.Status)
	}
}

// harness wires the service against in-memory stubs.

type harness struct {
	svc           Service
	repo          *stubRepo
	outbox        *stubOutbox
	prices        *stubPrices
	stock         *stubStock
	alerts        *stubAlerts
	riders        *stubRiders
	sink          *stubSink
	riderID       uuid.UUID
	payoutCutover time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	engine, err := pricing.NewEngine(config.PricingConfig{
		DepreciationPerYear:  0.10,
		MaxDepreciation:      0.70,
		RiderFlatPayoutCents: 2500,
	})
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	riderID := uuid.New()
	h := &harness{
		repo:          newStubRepo(),
		outbox:        &stubOutbox{},
		prices:        &stubPrices{price: 20000},
		stock:         newStubStock(),
		alerts:        &stubAlerts{},
		riders:        &stubRiders{users: map[uuid.UUID]*models.User{}},
		sink:          &stubSink{},
		riderID:       riderID,
		payoutCutover: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	h.riders.users[riderID] = &models.User{ID: riderID, Name: "Rider", Role: enums.ActorRoleRider, IsActive: true}

	svc, err := NewService(
		h.repo,
		stubTx{},
		h.outbox,
		engine,
		h.prices,
		h.stock,
		h.alerts,
		h.riders,
		h.sink,
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		config.VerificationConfig{MinEvidenceImages: 3},
		config.PayoutConfig{BankDetailsCutover: h.payoutCutover},
	)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	svc.(*service).now = func() time.Time { return testNow }
	h.svc = svc
	return h
}

func (h *harness) seedRequest(status enums.WorkflowStatus) *models.SellRequest {
	req := &models.SellRequest{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		SellerName:  "Asha",
		SellerPhone: "+15550001111",
		Device: types.DeviceSpec{
			Brand:        "Samsung",
			Model:        "Galaxy S23",
			StorageGB:    256,
			Condition:    enums.DeviceConditionGood,
			PurchaseYear: 2023,
		},
		PickupAddress:  types.PickupAddress{Line1: "12 Hill Rd", City: "Pune"},
		Status:         status,
		BasePriceCents: 12600,
		SellerDecision: enums.SellerDecisionPending,
		PayoutStatus:   enums.PayoutStatusPending,
		BankDetails: &types.BankDetails{
			AccountHolder: "Asha",
			AccountNumber: "1234567890",
			BankName:      "First Bank",
		},
		CreatedAt: testNow.Add(-48 * time.Hour),
	}
	h.repo.put(req)
	return req
}

func (h *harness) seedAssigned() *models.SellRequest {
	req := h.seedRequest(enums.WorkflowStatusAssignedToRider)
	slot := testNow.Add(24 * time.Hour)
	req.AssignedRiderID = &h.riderID
	req.PickupScheduledAt = &slot
	h.repo.put(req)
	return req
}

func (h *harness) seedVerified() *models.SellRequest {
	req := h.seedAssigned()
	req.Status = enums.WorkflowStatusUnderVerification
	req.Verification = &types.VerificationReport{
		Checks:          checkSheet(nil),
		FinalPriceCents: req.BasePriceCents,
		VerifiedBy:      h.riderID,
		VerifiedAt:      testNow.Add(-time.Hour),
	}
	h.repo.put(req)
	return req
}

func (h *harness) seedAccepted() *models.SellRequest {
	req := h.seedVerified()
	req.Status = enums.WorkflowStatusUserAccepted
	req.SellerDecision = enums.SellerDecisionAccepted
	h.repo.put(req)
	return req
}

// checkSheet builds a full check map where every listed check fails.
func checkSheet(failed []enums.DefectCheck) map[enums.DefectCheck]bool {
	sheet := make(map[enums.DefectCheck]bool, len(enums.AllDefectChecks()))
	for _, check := range enums.AllDefectChecks() {
		sheet[check] = true
	}
	for _, check := range failed {
		sheet[check] = false
	}
	return sheet
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != want {
		t.Fatalf("expected %s error, got %v", want, err)
	}
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	requests map[uuid.UUID]*models.SellRequest
	history  map[uuid.UUID][]*models.StatusHistory
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		requests: map[uuid.UUID]*models.SellRequest{},
		history:  map[uuid.UUID][]*models.StatusHistory{},
	}
}

func (r *stubRepo) put(req *models.SellRequest) {
	copied := *req
	r.requests[req.ID] = &copied
}

func (r *stubRepo) mustGet(t *testing.T, id uuid.UUID) *models.SellRequest {
	t.Helper()
	req, ok := r.requests[id]
	if !ok {
		t.Fatalf("request %s not stored", id)
	}
	return req
}

func (r *stubRepo) WithTx(_ *gorm.DB) Repository { return r }

func (r *stubRepo) Create(_ context.Context, req *models.SellRequest) (*models.SellRequest, error) {
	req.ID = uuid.New()
	req.CreatedAt = testNow
	req.UpdatedAt = testNow
	r.put(req)
	return req, nil
}

func (r *stubRepo) Find(_ context.Context, id uuid.UUID) (*models.SellRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *req
	return &copied, nil
}

func (r *stubRepo) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.SellRequest, error) {
	return r.Find(ctx, id)
}

func (r *stubRepo) Save(_ context.Context, req *models.SellRequest) error {
	r.put(req)
	return nil
}

func (r *stubRepo) AppendHistory(_ context.Context, entry *models.StatusHistory) error {
	r.history[entry.SellRequestID] = append(r.history[entry.SellRequestID], entry)
	return nil
}

func (r *stubRepo) ListBySeller(_ context.Context, _ uuid.UUID, _ pagination.Params) (*SellRequestList, error) {
	return &SellRequestList{}, nil
}

func (r *stubRepo) ListByRider(_ context.Context, _ uuid.UUID, _ pagination.Params) (*SellRequestList, error) {
	return &SellRequestList{}, nil
}

func (r *stubRepo) List(_ context.Context, _ pagination.Params, _ ListFilters) (*SellRequestList, error) {
	return &SellRequestList{}, nil
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (o *stubOutbox) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	o.events = append(o.events, event)
	return nil
}

func (o *stubOutbox) assertEmitted(t *testing.T, eventType enums.OutboxEventType) {
	t.Helper()
	for _, event := range o.events {
		if event.EventType == eventType {
			return
		}
	}
	t.Fatalf("expected %s event to be emitted, got %v", eventType, o.events)
}

type stubPrices struct {
	price int64
	err   error
}

func (p *stubPrices) MarketPriceCents(_ context.Context, _, _ string, _ int) (int64, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.price, nil
}

type stubStock struct {
	items map[uuid.UUID]models.StockItem
}

func newStubStock() *stubStock {
	return &stubStock{items: map[uuid.UUID]models.StockItem{}}
}

func (s *stubStock) Upsert(_ context.Context, _ *gorm.DB, item models.StockItem) error {
	if _, ok := s.items[item.SellRequestID]; ok {
		return nil
	}
	s.items[item.SellRequestID] = item
	return nil
}

type stubAlerts struct {
	raised []models.AdminAlert
}

func (a *stubAlerts) Raise(_ context.Context, _ *gorm.DB, alert models.AdminAlert) error {
	a.raised = append(a.raised, alert)
	return nil
}

type stubRiders struct {
	users map[uuid.UUID]*models.User
}

func (r *stubRiders) FindRider(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return user, nil
}

type stubSink struct {
	pushed []models.Notification
	err    error
}

func (s *stubSink) Push(_ context.Context, notification models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.pushed = append(s.pushed, notification)
	return nil
}
