package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmorales-dev/rentshop-backend/api/responses"
	"github.com/dmorales-dev/rentshop-backend/api/validators"
	"github.com/dmorales-dev/rentshop-backend/internal/catalog"
	"github.com/dmorales-dev/rentshop-backend/internal/inventory"
	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/logger"
)

// ItemView is the storefront presentation of a catalog entry with its
// live availability attached.
type ItemView struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Kind        enums.ItemKind    `json:"kind"`
	AlertLevel  int               `json:"alert_level"`
	Available   int               `json:"available"`
	StockStatus enums.StockStatus `json:"stock_status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// itemView merges an item with its availability. When the ledger read fails
// the view degrades to zero stock instead of failing the whole listing.
func itemView(r *http.Request, item *models.Item, inv inventory.Service, logg *logger.Logger) ItemView {
	view := ItemView{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Kind:        item.Kind,
		AlertLevel:  item.AlertLevel,
		Available:   0,
		StockStatus: enums.StockStatusOut,
		CreatedAt:   item.CreatedAt,
	}

	availability, err := inv.Availability(r.Context(), item)
	if err != nil {
		if logg != nil {
			ctx := logg.WithItemID(r.Context(), item.ID.String())
			logg.Warn(ctx, fmt.Sprintf("availability read failed, serving zero stock: %v", err))
		}
		return view
	}

	view.Available = availability.Available
	view.StockStatus = availability.Status
	return view
}

// ListItems returns the full catalog with availability for the storefront.
func ListItems(svc catalog.Service, inv inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || inv == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		items, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]ItemView, 0, len(items))
		for i := range items {
			views = append(views, itemView(r, &items[i], inv, logg))
		}
		responses.WriteSuccess(w, views)
	}
}

// GetItem returns a single catalog entry with availability.
func GetItem(svc catalog.Service, inv inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || inv == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemId"), "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetByID(r.Context(), itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, itemView(r, item, inv, logg))
	}
}
