package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// orderLister loads the orders that can contribute to a sales report.
type orderLister interface {
	ListByStatuses(ctx context.Context, statuses []enums.OrderStatus) ([]models.Order, error)
}

// rentalLister loads the rentals that can contribute to a sales report.
type rentalLister interface {
	ListByStatuses(ctx context.Context, statuses []enums.RentalStatus) ([]models.Rental, error)
}

// TransactionSource identifies where a report line came from.
type TransactionSource string

const (
	SourceOrder  TransactionSource = "order"
	SourceRental TransactionSource = "rental"
)

// Transaction is one resolved contributor to the sales report. Amount, units
// and timestamp are already resolved through the legacy fallback chains.
type Transaction struct {
	ID         uuid.UUID         `json:"id"`
	Source     TransactionSource `json:"source"`
	Amount     decimal.Decimal   `json:"amount"`
	Units      int               `json:"units"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// SalesReport aggregates orders and rentals over an inclusive date range.
type SalesReport struct {
	Start            time.Time       `json:"start"`
	End              time.Time       `json:"end"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int             `json:"transaction_count"`
	AverageValue     decimal.Decimal `json:"average_value"`
	TotalUnits       int             `json:"total_units"`
	Transactions     []Transaction   `json:"transactions"`
}

// Service builds sales reports.
type Service interface {
	SalesBetween(ctx context.Context, start, end time.Time) (*SalesReport, error)
}

type service struct {
	orders  orderLister
	rentals rentalLister
	metrics *metrics.ShopMetrics
	now     func() time.Time
}

// NewService wires the reports service. Metrics may be nil.
func NewService(orders orderLister, rentals rentalLister, shopMetrics *metrics.ShopMetrics) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order lister required")
	}
	if rentals == nil {
		return nil, fmt.Errorf("rental lister required")
	}
	return &service{
		orders:  orders,
		rentals: rentals,
		metrics: shopMetrics,
		now:     time.Now,
	}, nil
}

// SalesBetween aggregates finished/shipped orders and completed rentals whose
// resolved timestamp falls in [start 00:00:00, end 23:59:59.999999999],
// interpreted in each boundary's own location.
func (s *service) SalesBetween(ctx context.Context, start, end time.Time) (*SalesReport, error) {
	if start.IsZero() || end.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates required")
	}
	rangeStart := startOfDay(start)
	rangeEnd := endOfDay(end)
	if rangeEnd.Before(rangeStart) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date")
	}

	began := s.now()

	orders, err := s.orders.ListByStatuses(ctx, []enums.OrderStatus{
		enums.OrderStatusFinished,
		enums.OrderStatusShipped,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
	rentals, err := s.rentals.ListByStatuses(ctx, []enums.RentalStatus{enums.RentalStatusCompleted})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rentals")
	}

	report := &SalesReport{
		Start:        rangeStart,
		End:          rangeEnd,
		TotalAmount:  decimal.Zero,
		AverageValue: decimal.Zero,
		Transactions: []Transaction{},
	}

	for _, order := range orders {
		occurred := s.resolveOrderTimestamp(order)
		if occurred.Before(rangeStart) || occurred.After(rangeEnd) {
			continue
		}
		amount, units := resolveOrderAmount(order)
		report.Transactions = append(report.Transactions, Transaction{
			ID:         order.ID,
			Source:     SourceOrder,
			Amount:     amount,
			Units:      units,
			OccurredAt: occurred,
		})
	}

	for _, rental := range rentals {
		occurred := s.resolveRentalTimestamp(rental)
		if occurred.Before(rangeStart) || occurred.After(rangeEnd) {
			continue
		}
		amount := resolveRentalAmount(rental)
		units := rental.Quantity
		if units <= 0 {
			units = 1
		}
		report.Transactions = append(report.Transactions, Transaction{
			ID:         rental.ID,
			Source:     SourceRental,
			Amount:     amount,
			Units:      units,
			OccurredAt: occurred,
		})
	}

	sort.Slice(report.Transactions, func(i, j int) bool {
		return report.Transactions[i].OccurredAt.After(report.Transactions[j].OccurredAt)
	})

	for _, tx := range report.Transactions {
		report.TotalAmount = report.TotalAmount.Add(tx.Amount)
		report.TotalUnits += tx.Units
	}
	report.TransactionCount = len(report.Transactions)
	if report.TransactionCount > 0 {
		report.AverageValue = report.TotalAmount.
			Div(decimal.NewFromInt(int64(report.TransactionCount))).
			Round(2)
	}

	s.metrics.ObserveReportDuration("sales", s.now().Sub(began))
	return report, nil
}

// resolveOrderTimestamp falls back to the current time for records imported
// without a creation timestamp.
func (s *service) resolveOrderTimestamp(order models.Order) time.Time {
	if !order.CreatedAt.IsZero() {
		return order.CreatedAt
	}
	return s.now()
}

// resolveRentalTimestamp walks the historical column spellings in order of
// trustworthiness: the completion stamp, the legacy completion stamp, the row
// creation time, the legacy insertion time, and finally the current time.
func (s *service) resolveRentalTimestamp(rental models.Rental) time.Time {
	if rental.CompletedAt != nil && !rental.CompletedAt.IsZero() {
		return *rental.CompletedAt
	}
	if rental.LegacyDateCompleted != nil && !rental.LegacyDateCompleted.IsZero() {
		return *rental.LegacyDateCompleted
	}
	if !rental.CreatedAt.IsZero() {
		return rental.CreatedAt
	}
	if rental.DateAdded != nil && !rental.DateAdded.IsZero() {
		return *rental.DateAdded
	}
	return s.now()
}

// resolveOrderAmount sums the line items when present. Legacy orders carry no
// line items, only a pre-computed total; those count as a single unit.
func resolveOrderAmount(order models.Order) (decimal.Decimal, int) {
	if len(order.LineItems) > 0 {
		amount := decimal.Zero
		units := 0
		for _, line := range order.LineItems {
			amount = amount.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
			units += line.Quantity
		}
		return amount, units
	}
	if order.LegacyTotal != nil {
		return *order.LegacyTotal, 1
	}
	return order.TotalAmount, 1
}

// resolveRentalAmount prefers the settled amount, then the contracted total,
// then the deposit.
func resolveRentalAmount(rental models.Rental) decimal.Decimal {
	if rental.FinalAmount != nil {
		return *rental.FinalAmount
	}
	if rental.TotalAmount != nil {
		return *rental.TotalAmount
	}
	if rental.DepositAmount != nil {
		return *rental.DepositAmount
	}
	return decimal.Zero
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
