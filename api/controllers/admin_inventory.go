package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmorales-dev/rentshop-backend/api/responses"
	"github.com/dmorales-dev/rentshop-backend/api/validators"
	"github.com/dmorales-dev/rentshop-backend/internal/inventory"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/logger"
)

type restockRequest struct {
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Note     *string `json:"note,omitempty"`
}

type bulkRestockRequest struct {
	Quantities map[string]int `json:"quantities" validate:"required,min=1"`
}

type bulkRestockResultView struct {
	ItemID uuid.UUID `json:"item_id"`
	OK     bool      `json:"ok"`
	Error  string    `json:"error,omitempty"`
}

type editQuantityRequest struct {
	NewQuantity int     `json:"new_quantity" validate:"min=0"`
	Note        *string `json:"note,omitempty"`
}

// AdminRestock appends a restock adjustment for one item.
func AdminRestock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body restockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		adjustment, err := svc.Restock(r.Context(), inventory.RestockInput{
			ItemID:      itemID,
			Quantity:    body.Quantity,
			ActorUserID: actor,
			Note:        body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, adjustment)
	}
}

// AdminBulkRestock appends restock adjustments for several items; invalid
// quantities are reported per item without failing the batch.
func AdminBulkRestock(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var body bulkRestockRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantities := make(map[uuid.UUID]int, len(body.Quantities))
		for raw, qty := range body.Quantities {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item ids must be UUIDs").WithDetails(map[string]any{"item_id": raw}))
				return
			}
			quantities[id] = qty
		}

		actor, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.BulkRestock(r.Context(), inventory.BulkRestockInput{
			Quantities:  quantities,
			ActorUserID: actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]bulkRestockResultView, 0, len(results))
		for _, result := range results {
			view := bulkRestockResultView{ItemID: result.ItemID, OK: result.Err == nil}
			if result.Err != nil {
				view.Error = result.Err.Error()
			}
			views = append(views, view)
		}
		responses.WriteSuccess(w, views)
	}
}

// AdminEditQuantity sets an item's available quantity by appending the
// signed difference from the current ledger balance.
func AdminEditQuantity(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body editQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		adjustment, err := svc.EditQuantity(r.Context(), inventory.EditQuantityInput{
			ItemID:      itemID,
			NewQuantity: body.NewQuantity,
			ActorUserID: actor,
			Note:        body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if adjustment == nil {
			// Target already matches the current balance; nothing appended.
			responses.WriteSuccess(w, map[string]string{"status": "unchanged"})
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, adjustment)
	}
}

// AdminInventoryHistory lists an item's ledger entries, newest first.
func AdminInventoryHistory(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}

// AdminItemAvailability reports the raw ledger balance for one item. Unlike
// the storefront view this surfaces read failures instead of degrading.
func AdminItemAvailability(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		available, err := svc.Available(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int{"available": available})
	}
}
