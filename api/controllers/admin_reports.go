package controllers

import (
	"net/http"

	"github.com/dmorales-dev/rentshop-backend/api/responses"
	"github.com/dmorales-dev/rentshop-backend/api/validators"
	"github.com/dmorales-dev/rentshop-backend/internal/reports"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/logger"
)

// AdminSalesReport aggregates completed sales and settled rentals over an
// inclusive date window supplied as start/end query params.
func AdminSalesReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports service unavailable"))
			return
		}

		start, err := validators.ParseQueryDate(r, "start")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "end")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if end.Before(start) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date"))
			return
		}

		report, err := svc.SalesBetween(r.Context(), start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
