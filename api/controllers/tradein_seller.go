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
	"github.com/cellflip/cellflip-backend/pkg/types"
)

type createSellRequestBody struct {
	SellerName  string `json:"seller_name" validate:"required,min=2,max=120"`
	SellerPhone string `json:"seller_phone" validate:"required,min=7,max=20"`
	Device      struct {
		Brand        string   `json:"brand" validate:"required"`
		Model        string   `json:"model" validate:"required"`
		StorageGB    int      `json:"storage_gb" validate:"required,min=1"`
		RAMGB        int      `json:"ram_gb" validate:"omitempty,min=1"`
		Color        string   `json:"color,omitempty"`
		Condition    string   `json:"condition" validate:"required,oneof=excellent good fair poor"`
		PurchaseYear int      `json:"purchase_year" validate:"required,min=2000"`
		ImageKeys    []string `json:"image_keys,omitempty"`
	} `json:"device" validate:"required"`
	PickupAddress struct {
		Line1      string  `json:"line1" validate:"required"`
		Line2      *string `json:"line2,omitempty"`
		City       string  `json:"city" validate:"required"`
		State      string  `json:"state,omitempty"`
		PostalCode string  `json:"postal_code,omitempty"`
	} `json:"pickup_address" validate:"required"`
	BankDetails *bankDetailsBody `json:"bank_details,omitempty"`
}

type bankDetailsBody struct {
	AccountHolder string `json:"account_holder" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required,min=6,max=34"`
	BankName      string `json:"bank_name" validate:"required"`
	BranchCode    string `json:"branch_code,omitempty"`
}

type sellerDecisionBody struct {
	Accept *bool `json:"accept" validate:"required"`
}

// SellerCreateRequest submits a new trade-in request for the logged-in seller.
func SellerCreateRequest(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tradein service unavailable"))
			return
		}

		var body createSellRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sellerID, _ := middleware.ActorFromContext(r.Context())
		input := tradein.CreateInput{
			SellerID:    sellerID,
			SellerName:  validators.SanitizeString(body.SellerName, 120),
			SellerPhone: validators.SanitizeString(body.SellerPhone, 20),
			Device: types.DeviceSpec{
				Brand:        validators.SanitizeString(body.Device.Brand, 60),
				Model:        validators.SanitizeString(body.Device.Model, 120),
				StorageGB:    body.Device.StorageGB,
				RAMGB:        body.Device.RAMGB,
				Color:        validators.SanitizeString(body.Device.Color, 40),
				Condition:    enums.DeviceCondition(body.Device.Condition),
				PurchaseYear: body.Device.PurchaseYear,
				ImageKeys:    body.Device.ImageKeys,
			},
			PickupAddress: types.PickupAddress{
				Line1:      validators.SanitizeString(body.PickupAddress.Line1, 200),
				Line2:      body.PickupAddress.Line2,
				City:       validators.SanitizeString(body.PickupAddress.City, 80),
				State:      validators.SanitizeString(body.PickupAddress.State, 80),
				PostalCode: validators.SanitizeString(body.PickupAddress.PostalCode, 16),
			},
		}
		if body.BankDetails != nil {
			input.BankDetails = &types.BankDetails{
				AccountHolder: validators.SanitizeString(body.BankDetails.AccountHolder, 120),
				AccountNumber: validators.SanitizeString(body.BankDetails.AccountNumber, 34),
				BankName:      validators.SanitizeString(body.BankDetails.BankName, 120),
				BranchCode:    validators.SanitizeString(body.BankDetails.BranchCode, 20),
			}
		}

		view, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// SellerUpdateBankDetails replaces the payout destination before approval.
func SellerUpdateBankDetails(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body bankDetailsBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sellerID, _ := middleware.ActorFromContext(r.Context())
		view, err := svc.UpdateBankDetails(r.Context(), tradein.BankDetailsInput{
			RequestID: requestID,
			SellerID:  sellerID,
			Details: types.BankDetails{
				AccountHolder: validators.SanitizeString(body.AccountHolder, 120),
				AccountNumber: validators.SanitizeString(body.AccountNumber, 34),
				BankName:      validators.SanitizeString(body.BankName, 120),
				BranchCode:    validators.SanitizeString(body.BranchCode, 20),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SellerDecision records the seller's accept/reject of the final price.
func SellerDecision(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body sellerDecisionBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sellerID, _ := middleware.ActorFromContext(r.Context())
		view, err := svc.SellerDecision(r.Context(), tradein.SellerDecisionInput{
			RequestID: requestID,
			SellerID:  sellerID,
			Accept:    *body.Accept,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// SellerListRequests returns the seller's own requests.
func SellerListRequests(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
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

		sellerID, _ := middleware.ActorFromContext(r.Context())
		list, err := svc.ListBySeller(r.Context(), sellerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetRequest returns one request scoped to the calling actor.
func GetRequest(svc tradein.Service, logg *logger.Logger) http.HandlerFunc {
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

		actorID, role := middleware.ActorFromContext(r.Context())
		view, err := svc.Get(r.Context(), requestID, actorID, role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
