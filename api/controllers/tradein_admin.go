package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/api/middleware"
	"github.com/cellflip/cellflip-backend/api/responses"
	"github.com/cellflip/cellflip-backend/api/validators"
	"github.com/cellflip/cellflip-backend/internal/tradein"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/logger"
)

type approvalBody struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Note     string `json:"note" validate:"omitempty,max=500"`
}

type assignRiderBody struct {
	RiderID           string    `json:"rider_id" validate:"required,uuid"`
	PickupScheduledAt time.Time `json:"pickup_scheduled_at" validate:"required"`
}

type settlePayoutBody struct {
	TxRef string `json:"tx_ref" validate:"required,min=4,max=64"`
}

// AdminApproval approves or rejects a freshly created request.
func AdminApproval(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tradein service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body approvalBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		adminID, _ := middleware.ActorFromContext(r.Context())
		view, err := svc.Approval(r.Context(), tradein.ApprovalInput{
			RequestID: requestID,
			AdminID:   adminID,
			Decision:  tradein.ApprovalDecision(body.Decision),
			Note:      validators.SanitizeString(body.Note, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// AdminAssignRider binds a rider and pickup slot to an approved request.
func AdminAssignRider(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tradein service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assignRiderBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		riderID, err := uuid.Parse(body.RiderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "rider_id must be a uuid"))
			return
		}

		adminID, _ := middleware.ActorFromContext(r.Context())
		view, err := svc.AssignRider(r.Context(), tradein.AssignRiderInput{
			RequestID:         requestID,
			AdminID:           adminID,
			RiderID:           riderID,
			PickupScheduledAt: body.PickupScheduledAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// AdminSettlePayout marks the seller payout as paid with a transfer reference.
func AdminSettlePayout(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tradein service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body settlePayoutBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		adminID, _ := middleware.ActorFromContext(r.Context())
		view, err := svc.SettlePayout(r.Context(), tradein.SettlePayoutInput{
			RequestID: requestID,
			AdminID:   adminID,
			TxRef:     validators.SanitizeString(body.TxRef, 64),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// AdminListRequests lists requests across sellers with optional filters.
func AdminListRequests(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tradein service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters tradein.ListFilters
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseWorkflowStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if filters.SellerID, err = validators.ParseQueryUUID(r, "seller_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.RiderID, err = validators.ParseQueryUUID(r, "rider_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.DateFrom, err = validators.ParseQueryTime(r, "date_from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.DateTo, err = validators.ParseQueryTime(r, "date_to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
