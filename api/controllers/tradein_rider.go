package controllers

import (
	"net/http"

	"github.com/cellflip/cellflip-backend/api/middleware"
	"github.com/cellflip/cellflip-backend/api/responses"
	"github.com/cellflip/cellflip-backend/api/validators"
	"github.com/cellflip/cellflip-backend/internal/tradein"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/logger"
)

type attachEvidenceBody struct {
	ImageKeys []string `json:"image_keys" validate:"required,min=1,dive,required"`
}

type verifyBody struct {
	Checks map[string]bool `json:"checks" validate:"required"`
}

type riderRejectBody struct {
	Reason string `json:"reason" validate:"required,min=4,max=500"`
}

// RiderAttachEvidence appends doorstep photo references to a request.
func RiderAttachEvidence(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body attachEvidenceBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		riderID, _ := middleware.ActorFromContext(r.Context())
		view, err := svc.AttachEvidence(r.Context(), tradein.AttachEvidenceInput{
			RequestID: requestID,
			RiderID:   riderID,
			ImageKeys: body.ImageKeys,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// RiderVerify submits the doorstep check sheet.
func RiderVerify(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body verifyBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checks := make(map[enums.DefectCheck]bool, len(body.Checks))
		for name, passed := range body.Checks {
			check, err := enums.ParseDefectCheck(name)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "unknown check in sheet").
						WithDetails(map[string]any{"check": name}))
				return
			}
			checks[check] = passed
		}

		riderID, _ := middleware.ActorFromContext(r.Context())
		view, err := svc.Verify(r.Context(), tradein.VerifyInput{
			RequestID: requestID,
			RiderID:   riderID,
			Checks:    checks,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// RiderReject is the explicit reject path for devices that fail at the door.
func RiderReject(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body riderRejectBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		riderID, _ := middleware.ActorFromContext(r.Context())
		view, err := svc.RiderReject(r.Context(), tradein.RiderRejectInput{
			RequestID: requestID,
			RiderID:   riderID,
			Reason:    validators.SanitizeString(body.Reason, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// RiderCompletePickup finalizes the trade after the seller accepted.
func RiderCompletePickup(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
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

		riderID, _ := middleware.ActorFromContext(r.Context())
		view, err := svc.CompletePickup(r.Context(), tradein.CompletePickupInput{
			RequestID: requestID,
			RiderID:   riderID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// RiderListAssigned lists the requests currently assigned to the rider.
func RiderListAssigned(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
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

		riderID, _ := middleware.ActorFromContext(r.Context())
		list, err := svc.ListByRider(r.Context(), riderID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
