package controllers

import (
	"net/http"

	"github.com/dmorales-dev/rentshop-backend/api/responses"
	"github.com/dmorales-dev/rentshop-backend/api/validators"
	"github.com/dmorales-dev/rentshop-backend/internal/checkout"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	ShipStreet    string `json:"ship_street" validate:"required"`
	ShipCity      string `json:"ship_city" validate:"required"`
	ShipProvince  string `json:"ship_province"`
	ShipZip       string `json:"ship_zip"`
	ShipPhone     string `json:"ship_phone" validate:"required"`
}

// Checkout turns the session cart into a pending order with its stock
// consumption recorded in the same transaction.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), checkout.CheckoutInput{
			UserID:        userID,
			CustomerName:  body.CustomerName,
			CustomerEmail: body.CustomerEmail,
			ShipStreet:    body.ShipStreet,
			ShipCity:      body.ShipCity,
			ShipProvince:  body.ShipProvince,
			ShipZip:       body.ShipZip,
			ShipPhone:     body.ShipPhone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
