package rentals

import (
	"context"
	"testing"
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeRepo struct {
	rentals map[uuid.UUID]*models.Rental
	pending map[uuid.UUID]bool // keyed by item for the requesting user
	created []*models.Rental
	updated []*models.Rental
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rentals: map[uuid.UUID]*models.Rental{},
		pending: map[uuid.UUID]bool{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, rental *models.Rental) error {
	rental.ID = uuid.New()
	f.rentals[rental.ID] = rental
	f.created = append(f.created, rental)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	rental, ok := f.rentals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *rental
	return &copied, nil
}

func (f *fakeRepo) Update(ctx context.Context, rental *models.Rental) error {
	f.rentals[rental.ID] = rental
	f.updated = append(f.updated, rental)
	return nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Rental, error) {
	return nil, nil
}

func (f *fakeRepo) ListByStatuses(ctx context.Context, statuses []enums.RentalStatus) ([]models.Rental, error) {
	return nil, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]models.Rental, error) { return nil, nil }

func (f *fakeRepo) HasPendingForItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	return f.pending[itemID], nil
}

func (f *fakeRepo) ExistsForItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	for _, rental := range f.rentals {
		if rental.ItemID == itemID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) SumActiveHoldQuantity(ctx context.Context, itemID uuid.UUID) (int, error) {
	return 0, nil
}

type fakeItemSource struct {
	items map[uuid.UUID]*models.Item
}

func (f *fakeItemSource) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

type fakeStock struct {
	levels map[uuid.UUID]int
}

func (f *fakeStock) Available(ctx context.Context, itemID uuid.UUID) (int, error) {
	if level, ok := f.levels[itemID]; ok {
		return level, nil
	}
	return 100, nil
}

func rentableItem() *models.Item {
	return &models.Item{ID: uuid.New(), Name: "Canopy Tent", Kind: enums.ItemKindRent}
}

func newRentalService(t *testing.T, repo *fakeRepo, items *fakeItemSource, now time.Time) Service {
	t.Helper()
	return newRentalServiceWithStock(t, repo, items, &fakeStock{}, now)
}

func newRentalServiceWithStock(t *testing.T, repo *fakeRepo, items *fakeItemSource, stock *fakeStock, now time.Time) Service {
	t.Helper()
	svc, err := NewService(repo, items, stock, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	svc.(*service).now = func() time.Time { return now }
	return svc
}

func TestService_RequestCreatesPendingHold(t *testing.T) {
	item := rentableItem()
	repo := newFakeRepo()
	items := &fakeItemSource{items: map[uuid.UUID]*models.Item{item.ID: item}}
	svc := newRentalService(t, repo, items, time.Now())

	rental, err := svc.Request(context.Background(), RequestInput{
		ItemID: item.ID,
		UserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("Request error: %v", err)
	}
	if rental.Status != enums.RentalStatusPending {
		t.Fatalf("expected pending status, got %s", rental.Status)
	}
	if rental.Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", rental.Quantity)
	}
	if rental.ItemName != item.Name {
		t.Fatalf("expected item name snapshot, got %q", rental.ItemName)
	}
	if rental.DateAdded == nil {
		t.Fatal("expected date_added to be stamped")
	}
}

func TestService_RequestRejectsDuplicatePending(t *testing.T) {
	item := rentableItem()
	repo := newFakeRepo()
	repo.pending[item.ID] = true
	items := &fakeItemSource{items: map[uuid.UUID]*models.Item{item.ID: item}}
	svc := newRentalService(t, repo, items, time.Now())

	_, err := svc.Request(context.Background(), RequestInput{ItemID: item.ID, UserID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("duplicate request must not create a rental")
	}
}

func TestService_RequestRejectsSaleItem(t *testing.T) {
	item := &models.Item{ID: uuid.New(), Name: "Mug", Kind: enums.ItemKindSale}
	repo := newFakeRepo()
	items := &fakeItemSource{items: map[uuid.UUID]*models.Item{item.ID: item}}
	svc := newRentalService(t, repo, items, time.Now())

	_, err := svc.Request(context.Background(), RequestInput{ItemID: item.ID, UserID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_RequestRejectsInsufficientStock(t *testing.T) {
	item := rentableItem()
	repo := newFakeRepo()
	items := &fakeItemSource{items: map[uuid.UUID]*models.Item{item.ID: item}}
	stock := &fakeStock{levels: map[uuid.UUID]int{item.ID: 0}}
	svc := newRentalServiceWithStock(t, repo, items, stock, time.Now())

	_, err := svc.Request(context.Background(), RequestInput{ItemID: item.ID, UserID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("out-of-stock request must not create a rental")
	}
}

func TestService_FinalizeRejectsDrainedStock(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	repo := newFakeRepo()
	rental := &models.Rental{ID: uuid.New(), ItemID: uuid.New(), UserID: uuid.New(), Status: enums.RentalStatusPending, Quantity: 2}
	repo.rentals[rental.ID] = rental
	stock := &fakeStock{levels: map[uuid.UUID]int{rental.ItemID: 1}}
	svc := newRentalServiceWithStock(t, repo, &fakeItemSource{}, stock, now)

	_, err := svc.Finalize(context.Background(), rental.ID, FinalizeInput{
		PickupDate: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		Phone:      "555-0100",
		Address:    "12 Shore Rd",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatal("rental must stay pending when stock is gone")
	}
}

func TestService_FinalizeActivatesHold(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	repo := newFakeRepo()
	rental := &models.Rental{ID: uuid.New(), ItemID: uuid.New(), UserID: uuid.New(), Status: enums.RentalStatusPending, Quantity: 1}
	repo.rentals[rental.ID] = rental
	svc := newRentalService(t, repo, &fakeItemSource{}, now)

	deposit := decimal.NewFromInt(50)
	got, err := svc.Finalize(context.Background(), rental.ID, FinalizeInput{
		PickupDate:    time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		Phone:         "555-0100",
		Address:       "12 Shore Rd",
		DepositAmount: &deposit,
	})
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if got.Status != enums.RentalStatusActive {
		t.Fatalf("expected active status, got %s", got.Status)
	}
	if got.DurationDays == nil || *got.DurationDays != 3 {
		t.Fatalf("expected 3 duration days, got %v", got.DurationDays)
	}
	if got.Phone == nil || *got.Phone != "555-0100" {
		t.Fatal("expected phone to be recorded")
	}
}

func TestService_FinalizeDateValidation(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		pickup time.Time
		due    time.Time
	}{
		{
			name:   "pickup today rejected",
			pickup: time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC),
			due:    time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "pickup in the past rejected",
			pickup: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
			due:    time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "due equal to pickup rejected",
			pickup: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
			due:    time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "due before pickup rejected",
			pickup: time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
			due:    time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo()
			rental := &models.Rental{ID: uuid.New(), Status: enums.RentalStatusPending}
			repo.rentals[rental.ID] = rental
			svc := newRentalService(t, repo, &fakeItemSource{}, now)

			_, err := svc.Finalize(context.Background(), rental.ID, FinalizeInput{
				PickupDate: tc.pickup,
				DueDate:    tc.due,
				Phone:      "555-0100",
				Address:    "12 Shore Rd",
			})
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_FinalizeRequiresPendingState(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	repo := newFakeRepo()
	rental := &models.Rental{ID: uuid.New(), Status: enums.RentalStatusActive}
	repo.rentals[rental.ID] = rental
	svc := newRentalService(t, repo, &fakeItemSource{}, now)

	_, err := svc.Finalize(context.Background(), rental.ID, FinalizeInput{
		PickupDate: time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		Phone:      "555-0100",
		Address:    "12 Shore Rd",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestService_CancelOnlyPending(t *testing.T) {
	owner := uuid.New()
	for _, status := range []enums.RentalStatus{enums.RentalStatusActive, enums.RentalStatusCompleted, enums.RentalStatusExpired} {
		repo := newFakeRepo()
		rental := &models.Rental{ID: uuid.New(), UserID: owner, Status: status}
		repo.rentals[rental.ID] = rental
		svc := newRentalService(t, repo, &fakeItemSource{}, time.Now())

		err := svc.Cancel(context.Background(), rental.ID, owner, enums.UserRoleCustomer)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("status %s: expected state conflict, got %v", status, err)
		}
	}
}

func TestService_CancelForbiddenForOtherUser(t *testing.T) {
	repo := newFakeRepo()
	rental := &models.Rental{ID: uuid.New(), UserID: uuid.New(), Status: enums.RentalStatusPending}
	repo.rentals[rental.ID] = rental
	svc := newRentalService(t, repo, &fakeItemSource{}, time.Now())

	err := svc.Cancel(context.Background(), rental.ID, uuid.New(), enums.UserRoleCustomer)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestService_CancelAllowedForStaff(t *testing.T) {
	repo := newFakeRepo()
	rental := &models.Rental{ID: uuid.New(), UserID: uuid.New(), Status: enums.RentalStatusPending}
	repo.rentals[rental.ID] = rental
	svc := newRentalService(t, repo, &fakeItemSource{}, time.Now())

	if err := svc.Cancel(context.Background(), rental.ID, uuid.New(), enums.UserRoleAdmin); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if repo.rentals[rental.ID].Status != enums.RentalStatusCancelled {
		t.Fatalf("expected cancelled, got %s", repo.rentals[rental.ID].Status)
	}
}

func TestService_CompleteStampsTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	rental := &models.Rental{ID: uuid.New(), Status: enums.RentalStatusActive}
	repo.rentals[rental.ID] = rental
	svc := newRentalService(t, repo, &fakeItemSource{}, now)

	final := decimal.NewFromInt(120)
	got, err := svc.Complete(context.Background(), rental.ID, SettleInput{FinalAmount: &final})
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got.Status != enums.RentalStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(now) {
		t.Fatalf("expected completed_at %v, got %v", now, got.CompletedAt)
	}
	if got.FinalAmount == nil || !got.FinalAmount.Equal(final) {
		t.Fatal("expected final amount to be recorded")
	}
}

func TestService_ExpireRequiresActive(t *testing.T) {
	repo := newFakeRepo()
	rental := &models.Rental{ID: uuid.New(), Status: enums.RentalStatusPending}
	repo.rentals[rental.ID] = rental
	svc := newRentalService(t, repo, &fakeItemSource{}, time.Now())

	_, err := svc.Expire(context.Background(), rental.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestService_GetByIDNotFound(t *testing.T) {
	svc := newRentalService(t, newFakeRepo(), &fakeItemSource{}, time.Now())

	_, err := svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
