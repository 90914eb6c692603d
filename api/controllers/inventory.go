package controllers

import (
	"net/http"

	"github.com/cellflip/cellflip-backend/api/responses"
	"github.com/cellflip/cellflip-backend/api/validators"
	"github.com/cellflip/cellflip-backend/internal/inventory"
	"github.com/cellflip/cellflip-backend/pkg/enums"
	pkgerrors "github.com/cellflip/cellflip-backend/pkg/errors"
	"github.com/cellflip/cellflip-backend/pkg/logger"
)

type setStockStatusBody struct {
	Status string `json:"status" validate:"required"`
}

// AdminListStock lists acquired devices with optional status/brand filters.
func AdminListStock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters inventory.ListFilters
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseStockStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		filters.Brand = validators.SanitizeString(r.URL.Query().Get("brand"), 60)

		list, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminSetStockStatus moves a stock item through its lifecycle.
func AdminSetStockStatus(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setStockStatusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseStockStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "invalid stock status"))
			return
		}

		if err := svc.SetStatus(r.Context(), itemID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}
