package catalog

import (
	"context"
	"testing"

	"github.com/dmorales-dev/rentshop-backend/internal/inventory"
	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeCatalogRepo struct {
	items   map[uuid.UUID]*models.Item
	deleted []uuid.UUID
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{items: map[uuid.UUID]*models.Item{}}
}

func (f *fakeCatalogRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeCatalogRepo) Create(ctx context.Context, item *models.Item) error {
	item.ID = uuid.New()
	f.items[item.ID] = item
	return nil
}

func (f *fakeCatalogRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeCatalogRepo) Update(ctx context.Context, item *models.Item) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeCatalogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCatalogRepo) ListAll(ctx context.Context) ([]models.Item, error) { return nil, nil }

type fakeLedgerRepo struct {
	created       []*models.InventoryAdjustment
	deletedByItem []uuid.UUID
}

func (f *fakeLedgerRepo) WithTx(tx *gorm.DB) inventory.Repository { return f }

func (f *fakeLedgerRepo) Create(ctx context.Context, adjustment *models.InventoryAdjustment) error {
	f.created = append(f.created, adjustment)
	return nil
}

func (f *fakeLedgerRepo) SumQuantityByItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	return 0, nil
}

func (f *fakeLedgerRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.InventoryAdjustment, error) {
	return nil, nil
}

func (f *fakeLedgerRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.InventoryAdjustment, error) {
	return nil, nil
}

func (f *fakeLedgerRepo) HasAdjustmentForOrder(ctx context.Context, orderID uuid.UUID, kind enums.AdjustmentKind) (bool, error) {
	return false, nil
}

func (f *fakeLedgerRepo) DeleteByItemID(ctx context.Context, itemID uuid.UUID) error {
	f.deletedByItem = append(f.deletedByItem, itemID)
	return nil
}

type fakeRentalSource struct {
	rented map[uuid.UUID]bool
}

func (f *fakeRentalSource) ExistsForItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	return f.rented[itemID], nil
}

func newCatalogService(t *testing.T, repo *fakeCatalogRepo, ledger *fakeLedgerRepo) Service {
	t.Helper()
	return newCatalogServiceWithRentals(t, repo, ledger, &fakeRentalSource{})
}

func newCatalogServiceWithRentals(t *testing.T, repo *fakeCatalogRepo, ledger *fakeLedgerRepo, rentalSource *fakeRentalSource) Service {
	t.Helper()
	svc, err := NewService(stubTxRunner{}, repo, ledger, rentalSource, nil)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_CreateSeedsInitialStock(t *testing.T) {
	repo := newFakeCatalogRepo()
	ledger := &fakeLedgerRepo{}
	svc := newCatalogService(t, repo, ledger)

	actor := uuid.New()
	item, err := svc.Create(context.Background(), CreateInput{
		Name:            "Folding Chair",
		Price:           decimal.NewFromInt(25),
		AlertLevel:      3,
		Kind:            enums.ItemKindSale,
		InitialQuantity: 10,
		ActorUserID:     actor,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if item.ID == uuid.Nil {
		t.Fatal("expected item id to be assigned")
	}
	if len(ledger.created) != 1 {
		t.Fatalf("expected one initial-stock entry, got %d", len(ledger.created))
	}
	entry := ledger.created[0]
	if entry.Kind != enums.AdjustmentKindInitialStock || entry.Quantity != 10 {
		t.Fatalf("unexpected ledger entry: %+v", entry)
	}
	if entry.ItemID != item.ID || entry.ActorUserID != actor {
		t.Fatal("ledger entry not linked to item/actor")
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := newCatalogService(t, newFakeCatalogRepo(), &fakeLedgerRepo{})

	tests := []struct {
		name  string
		input CreateInput
	}{
		{
			name:  "missing name",
			input: CreateInput{Price: decimal.NewFromInt(1), Kind: enums.ItemKindSale, ActorUserID: uuid.New()},
		},
		{
			name:  "negative price",
			input: CreateInput{Name: "X", Price: decimal.NewFromInt(-1), Kind: enums.ItemKindSale, ActorUserID: uuid.New()},
		},
		{
			name:  "invalid kind",
			input: CreateInput{Name: "X", Price: decimal.NewFromInt(1), Kind: enums.ItemKind("bogus"), ActorUserID: uuid.New()},
		},
		{
			name:  "negative initial quantity",
			input: CreateInput{Name: "X", Price: decimal.NewFromInt(1), Kind: enums.ItemKindSale, InitialQuantity: -1, ActorUserID: uuid.New()},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_UpdateAppliesPartialEdits(t *testing.T) {
	repo := newFakeCatalogRepo()
	item := &models.Item{ID: uuid.New(), Name: "Old", Price: decimal.NewFromInt(10), AlertLevel: 2, Kind: enums.ItemKindSale}
	repo.items[item.ID] = item
	svc := newCatalogService(t, repo, &fakeLedgerRepo{})

	name := "New"
	price := decimal.NewFromInt(15)
	got, err := svc.Update(context.Background(), item.ID, UpdateInput{Name: &name, Price: &price})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Name != "New" || !got.Price.Equal(price) {
		t.Fatalf("edits not applied: %+v", got)
	}
	if got.AlertLevel != 2 {
		t.Fatalf("untouched field changed: %d", got.AlertLevel)
	}
}

func TestService_DeleteCascadesLedger(t *testing.T) {
	repo := newFakeCatalogRepo()
	ledger := &fakeLedgerRepo{}
	item := &models.Item{ID: uuid.New(), Name: "Gone", Kind: enums.ItemKindSale}
	repo.items[item.ID] = item
	svc := newCatalogService(t, repo, ledger)

	if err := svc.Delete(context.Background(), item.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if len(ledger.deletedByItem) != 1 || ledger.deletedByItem[0] != item.ID {
		t.Fatal("expected ledger cascade delete")
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != item.ID {
		t.Fatal("expected item delete")
	}
}

func TestService_DeleteRejectsRentedItem(t *testing.T) {
	repo := newFakeCatalogRepo()
	ledger := &fakeLedgerRepo{}
	item := &models.Item{ID: uuid.New(), Name: "Canopy Tent", Kind: enums.ItemKindRent}
	repo.items[item.ID] = item
	svc := newCatalogServiceWithRentals(t, repo, ledger, &fakeRentalSource{rented: map[uuid.UUID]bool{item.ID: true}})

	err := svc.Delete(context.Background(), item.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(repo.deleted) != 0 || len(ledger.deletedByItem) != 0 {
		t.Fatal("nothing may be deleted for a rented item")
	}
}

func TestService_DeleteUnknownItem(t *testing.T) {
	svc := newCatalogService(t, newFakeCatalogRepo(), &fakeLedgerRepo{})

	err := svc.Delete(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
