package controllers

import (
	"net/http"

	"github.com/cellflip/cellflip-backend/api/responses"
	"github.com/cellflip/cellflip-backend/api/validators"
	"github.com/cellflip/cellflip-backend/internal/catalog"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/logger"
)

type createPhoneModelBody struct {
	Brand            string `json:"brand" validate:"required,min=2,max=60"`
	Model            string `json:"model" validate:"required,min=1,max=120"`
	StorageGB        int    `json:"storage_gb" validate:"required,min=1"`
	RAMGB            int    `json:"ram_gb" validate:"omitempty,min=1"`
	MarketPriceCents int64  `json:"market_price_cents" validate:"required,min=1"`
	ReleaseYear      int    `json:"release_year" validate:"required,min=2000"`
}

type updatePriceBody struct {
	MarketPriceCents int64 `json:"market_price_cents" validate:"required,min=1"`
}

type setActiveBody struct {
	Active *bool `json:"active" validate:"required"`
}

// AdminCreatePhoneModel adds a device to the price catalog.
func AdminCreatePhoneModel(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body createPhoneModelBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Create(r.Context(), catalog.CreateInput{
			Brand:            validators.SanitizeString(body.Brand, 60),
			Model:            validators.SanitizeString(body.Model, 120),
			StorageGB:        body.StorageGB,
			RAMGB:            body.RAMGB,
			MarketPriceCents: body.MarketPriceCents,
			ReleaseYear:      body.ReleaseYear,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// ListPhoneModels lists catalog entries. Sellers see active entries only.
func ListPhoneModels(svc catalog.Service, logg *logger.Logger, activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := catalog.ListFilters{
			Brand:      validators.SanitizeString(r.URL.Query().Get("brand"), 60),
			ActiveOnly: activeOnly || validators.ParseQueryBool(r, "active_only"),
		}
		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminUpdatePhonePrice adjusts the market price. Quotes already issued keep
// their locked base price.
func AdminUpdatePhonePrice(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		modelID, err := pathUUID(r, "modelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updatePriceBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.UpdatePrice(r.Context(), catalog.UpdatePriceInput{
			ID:               modelID,
			MarketPriceCents: body.MarketPriceCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// AdminSetPhoneModelActive toggles whether a model accepts new requests.
func AdminSetPhoneModelActive(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		modelID, err := pathUUID(r, "modelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setActiveBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetActive(r.Context(), modelID, *body.Active); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"active": *body.Active})
	}
}
