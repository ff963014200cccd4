package reports

import (
	"context"
	"testing"
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeOrderLister struct {
	orders    []models.Order
	requested []enums.OrderStatus
}

func (f *fakeOrderLister) ListByStatuses(ctx context.Context, statuses []enums.OrderStatus) ([]models.Order, error) {
	f.requested = statuses
	return f.orders, nil
}

type fakeRentalLister struct {
	rentals   []models.Rental
	requested []enums.RentalStatus
}

func (f *fakeRentalLister) ListByStatuses(ctx context.Context, statuses []enums.RentalStatus) ([]models.Rental, error) {
	f.requested = statuses
	return f.rentals, nil
}

func newReportService(t *testing.T, orders *fakeOrderLister, rentals *fakeRentalLister) Service {
	t.Helper()
	svc, err := NewService(orders, rentals, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func lineItem(price int64, qty int) models.OrderLineItem {
	return models.OrderLineItem{
		ID:        uuid.New(),
		ItemID:    uuid.New(),
		UnitPrice: decimal.NewFromInt(price),
		Quantity:  qty,
	}
}

func TestService_SalesBetweenAggregatesOrdersAndRentals(t *testing.T) {
	jan15 := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	jan18 := time.Date(2024, 1, 18, 16, 30, 0, 0, time.UTC)

	finalAmount := decimal.NewFromInt(40)
	orders := &fakeOrderLister{orders: []models.Order{
		{
			ID:        uuid.New(),
			Status:    enums.OrderStatusFinished,
			CreatedAt: jan15,
			LineItems: []models.OrderLineItem{lineItem(10, 2), lineItem(5, 1)},
		},
	}}
	rentals := &fakeRentalLister{rentals: []models.Rental{
		{
			ID:          uuid.New(),
			Status:      enums.RentalStatusCompleted,
			Quantity:    1,
			CompletedAt: &jan18,
			FinalAmount: &finalAmount,
		},
	}}
	svc := newReportService(t, orders, rentals)

	report, err := svc.SalesBetween(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("SalesBetween error: %v", err)
	}

	if report.TransactionCount != 2 {
		t.Fatalf("count = %d, want 2", report.TransactionCount)
	}
	if !report.TotalAmount.Equal(decimal.NewFromInt(65)) {
		t.Fatalf("total = %s, want 65", report.TotalAmount)
	}
	if !report.AverageValue.Equal(decimal.NewFromFloat(32.5)) {
		t.Fatalf("average = %s, want 32.5", report.AverageValue)
	}
	if report.TotalUnits != 4 {
		t.Fatalf("units = %d, want 4", report.TotalUnits)
	}
	// Sorted descending by resolved timestamp: the Jan 18 rental first.
	if report.Transactions[0].Source != SourceRental {
		t.Fatalf("expected rental first, got %s", report.Transactions[0].Source)
	}
	if report.Transactions[1].Source != SourceOrder {
		t.Fatalf("expected order second, got %s", report.Transactions[1].Source)
	}
}

func TestService_SalesBetweenQueriesContributingStatusesOnly(t *testing.T) {
	orders := &fakeOrderLister{}
	rentals := &fakeRentalLister{}
	svc := newReportService(t, orders, rentals)

	if _, err := svc.SalesBetween(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	); err != nil {
		t.Fatalf("SalesBetween error: %v", err)
	}

	if len(orders.requested) != 2 ||
		orders.requested[0] != enums.OrderStatusFinished ||
		orders.requested[1] != enums.OrderStatusShipped {
		t.Fatalf("unexpected order statuses: %v", orders.requested)
	}
	if len(rentals.requested) != 1 || rentals.requested[0] != enums.RentalStatusCompleted {
		t.Fatalf("unexpected rental statuses: %v", rentals.requested)
	}
}

func TestService_SalesBetweenRangeBoundariesInclusive(t *testing.T) {
	inRangeStart := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	inRangeEnd := time.Date(2024, 1, 20, 23, 59, 59, 0, time.UTC)
	outOfRange := time.Date(2024, 1, 21, 0, 0, 0, 0, time.UTC)

	orders := &fakeOrderLister{orders: []models.Order{
		{ID: uuid.New(), Status: enums.OrderStatusFinished, CreatedAt: inRangeStart, TotalAmount: decimal.NewFromInt(10)},
		{ID: uuid.New(), Status: enums.OrderStatusFinished, CreatedAt: inRangeEnd, TotalAmount: decimal.NewFromInt(20)},
		{ID: uuid.New(), Status: enums.OrderStatusShipped, CreatedAt: outOfRange, TotalAmount: decimal.NewFromInt(99)},
	}}
	svc := newReportService(t, orders, &fakeRentalLister{})

	report, err := svc.SalesBetween(context.Background(),
		time.Date(2024, 1, 15, 11, 30, 0, 0, time.UTC),
		time.Date(2024, 1, 20, 2, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("SalesBetween error: %v", err)
	}
	if report.TransactionCount != 2 {
		t.Fatalf("count = %d, want 2 (boundaries inclusive, later day excluded)", report.TransactionCount)
	}
	if !report.TotalAmount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("total = %s, want 30", report.TotalAmount)
	}
}

func TestService_RentalTimestampFallbackChain(t *testing.T) {
	completed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	legacy := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	added := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	svc := &service{now: func() time.Time { return time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC) }}

	tests := []struct {
		name   string
		rental models.Rental
		want   time.Time
	}{
		{
			name:   "completed_at wins",
			rental: models.Rental{CompletedAt: &completed, LegacyDateCompleted: &legacy, CreatedAt: created, DateAdded: &added},
			want:   completed,
		},
		{
			name:   "legacy completion next",
			rental: models.Rental{LegacyDateCompleted: &legacy, CreatedAt: created, DateAdded: &added},
			want:   legacy,
		},
		{
			name:   "created_at next",
			rental: models.Rental{CreatedAt: created, DateAdded: &added},
			want:   created,
		},
		{
			name:   "date_added next",
			rental: models.Rental{DateAdded: &added},
			want:   added,
		},
		{
			name:   "current time last",
			rental: models.Rental{},
			want:   svc.now(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.resolveRentalTimestamp(tc.rental); !got.Equal(tc.want) {
				t.Fatalf("resolved %v, want %v", got, tc.want)
			}
		})
	}
}

func TestService_RentalAmountFallbackChain(t *testing.T) {
	final := decimal.NewFromInt(100)
	total := decimal.NewFromInt(80)
	deposit := decimal.NewFromInt(30)

	tests := []struct {
		name   string
		rental models.Rental
		want   decimal.Decimal
	}{
		{name: "final amount wins", rental: models.Rental{FinalAmount: &final, TotalAmount: &total, DepositAmount: &deposit}, want: final},
		{name: "total amount next", rental: models.Rental{TotalAmount: &total, DepositAmount: &deposit}, want: total},
		{name: "deposit next", rental: models.Rental{DepositAmount: &deposit}, want: deposit},
		{name: "zero last", rental: models.Rental{}, want: decimal.Zero},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveRentalAmount(tc.rental); !got.Equal(tc.want) {
				t.Fatalf("resolved %s, want %s", got, tc.want)
			}
		})
	}
}

func TestService_LegacyOrderAmountFallback(t *testing.T) {
	legacyTotal := decimal.NewFromInt(55)
	order := models.Order{LegacyTotal: &legacyTotal}

	amount, units := resolveOrderAmount(order)
	if !amount.Equal(legacyTotal) {
		t.Fatalf("amount = %s, want %s", amount, legacyTotal)
	}
	if units != 1 {
		t.Fatalf("units = %d, want 1", units)
	}
}

func TestService_SalesBetweenValidation(t *testing.T) {
	svc := newReportService(t, &fakeOrderLister{}, &fakeRentalLister{})

	_, err := svc.SalesBetween(context.Background(), time.Time{}, time.Now())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero start, got %v", err)
	}

	_, err = svc.SalesBetween(context.Background(),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inverted range, got %v", err)
	}
}

func TestService_EmptyRangeAverageIsZero(t *testing.T) {
	svc := newReportService(t, &fakeOrderLister{}, &fakeRentalLister{})

	report, err := svc.SalesBetween(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("SalesBetween error: %v", err)
	}
	if report.TransactionCount != 0 || !report.AverageValue.Equal(decimal.Zero) {
		t.Fatalf("expected empty report with zero average, got %+v", report)
	}
}
