package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmorales-dev/rentshop-backend/api/middleware"
	"github.com/dmorales-dev/rentshop-backend/api/responses"
	"github.com/dmorales-dev/rentshop-backend/api/validators"
	"github.com/dmorales-dev/rentshop-backend/internal/catalog"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/logger"
)

type createItemRequest struct {
	Name            string          `json:"name" validate:"required"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price" validate:"required"`
	AlertLevel      int             `json:"alert_level" validate:"min=0"`
	Kind            string          `json:"kind" validate:"required"`
	InitialQuantity int             `json:"initial_quantity" validate:"min=0"`
}

type updateItemRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	AlertLevel  *int             `json:"alert_level,omitempty"`
}

func actorUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor identity")
	}
	return id, nil
}

// AdminCreateItem adds a catalog entry and seeds its initial stock.
func AdminCreateItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var body createItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseItemKind(body.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid item kind"))
			return
		}

		actor, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), catalog.CreateInput{
			Name:            body.Name,
			Description:     body.Description,
			Price:           body.Price,
			AlertLevel:      body.AlertLevel,
			Kind:            kind,
			InitialQuantity: body.InitialQuantity,
			ActorUserID:     actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// AdminUpdateItem applies a partial edit to a catalog entry.
func AdminUpdateItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Update(r.Context(), itemID, catalog.UpdateInput{
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			AlertLevel:  body.AlertLevel,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// AdminDeleteItem removes a catalog entry along with its ledger history.
func AdminDeleteItem(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
