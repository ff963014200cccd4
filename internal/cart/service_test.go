package cart

import (
	"context"
	"testing"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeStore struct {
	carts   map[uuid.UUID]*Cart
	cleared []uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{carts: map[uuid.UUID]*Cart{}}
}

func (f *fakeStore) Load(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	if cart, ok := f.carts[userID]; ok {
		copied := *cart
		copied.Items = append([]CartItem(nil), cart.Items...)
		return &copied, nil
	}
	return &Cart{UserID: userID}, nil
}

func (f *fakeStore) Save(ctx context.Context, cart *Cart) error {
	f.carts[cart.UserID] = cart
	return nil
}

func (f *fakeStore) Clear(ctx context.Context, userID uuid.UUID) error {
	delete(f.carts, userID)
	f.cleared = append(f.cleared, userID)
	return nil
}

type fakeItems struct {
	items map[uuid.UUID]*models.Item
}

func (f *fakeItems) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
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

func saleItem(name string, price int64) *models.Item {
	return &models.Item{
		ID:    uuid.New(),
		Name:  name,
		Price: decimal.NewFromInt(price),
		Kind:  enums.ItemKindSale,
	}
}

func newCartService(t *testing.T, store *fakeStore, items *fakeItems) Service {
	t.Helper()
	return newCartServiceWithStock(t, store, items, &fakeStock{})
}

func newCartServiceWithStock(t *testing.T, store *fakeStore, items *fakeItems, stock *fakeStock) Service {
	t.Helper()
	svc, err := NewService(store, items, stock)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_AddItemSnapshotsCatalogData(t *testing.T) {
	item := saleItem("Camping Mug", 12)
	store := newFakeStore()
	svc := newCartService(t, store, &fakeItems{items: map[uuid.UUID]*models.Item{item.ID: item}})

	userID := uuid.New()
	cart, err := svc.AddItem(context.Background(), userID, item.ID, 2)
	if err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	line := cart.Items[0]
	if line.Name != item.Name || !line.UnitPrice.Equal(item.Price) || line.Quantity != 2 {
		t.Fatalf("unexpected line: %+v", line)
	}
	if !cart.Subtotal().Equal(decimal.NewFromInt(24)) {
		t.Fatalf("subtotal = %s, want 24", cart.Subtotal())
	}
}

func TestService_AddItemMergesExistingLine(t *testing.T) {
	item := saleItem("Camping Mug", 12)
	store := newFakeStore()
	svc := newCartService(t, store, &fakeItems{items: map[uuid.UUID]*models.Item{item.ID: item}})

	userID := uuid.New()
	if _, err := svc.AddItem(context.Background(), userID, item.ID, 2); err != nil {
		t.Fatalf("first AddItem error: %v", err)
	}
	cart, err := svc.AddItem(context.Background(), userID, item.ID, 3)
	if err != nil {
		t.Fatalf("second AddItem error: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", cart.Items[0].Quantity)
	}
}

func TestService_AddItemRejectsRentals(t *testing.T) {
	item := &models.Item{ID: uuid.New(), Name: "Kayak", Kind: enums.ItemKindRent}
	svc := newCartService(t, newFakeStore(), &fakeItems{items: map[uuid.UUID]*models.Item{item.ID: item}})

	_, err := svc.AddItem(context.Background(), uuid.New(), item.ID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_AddItemUnknownItem(t *testing.T) {
	svc := newCartService(t, newFakeStore(), &fakeItems{items: map[uuid.UUID]*models.Item{}})

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_AddItemRejectsOutOfStock(t *testing.T) {
	item := saleItem("Camping Mug", 12)
	store := newFakeStore()
	svc := newCartServiceWithStock(t, store,
		&fakeItems{items: map[uuid.UUID]*models.Item{item.ID: item}},
		&fakeStock{levels: map[uuid.UUID]int{item.ID: 0}})

	userID := uuid.New()
	_, err := svc.AddItem(context.Background(), userID, item.ID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if saved, ok := store.carts[userID]; ok && len(saved.Items) != 0 {
		t.Fatalf("cart must stay empty, got %+v", saved.Items)
	}
}

func TestService_AddItemMergeCannotExceedStock(t *testing.T) {
	item := saleItem("Camping Mug", 12)
	store := newFakeStore()
	svc := newCartServiceWithStock(t, store,
		&fakeItems{items: map[uuid.UUID]*models.Item{item.ID: item}},
		&fakeStock{levels: map[uuid.UUID]int{item.ID: 3}})

	userID := uuid.New()
	if _, err := svc.AddItem(context.Background(), userID, item.ID, 2); err != nil {
		t.Fatalf("first AddItem error: %v", err)
	}
	_, err := svc.AddItem(context.Background(), userID, item.ID, 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if store.carts[userID].Items[0].Quantity != 2 {
		t.Fatalf("line quantity changed to %d", store.carts[userID].Items[0].Quantity)
	}
}

func TestService_UpdateQuantityRejectsOverStock(t *testing.T) {
	item := saleItem("Camping Mug", 12)
	store := newFakeStore()
	svc := newCartServiceWithStock(t, store,
		&fakeItems{items: map[uuid.UUID]*models.Item{item.ID: item}},
		&fakeStock{levels: map[uuid.UUID]int{item.ID: 3}})

	userID := uuid.New()
	if _, err := svc.AddItem(context.Background(), userID, item.ID, 2); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	_, err := svc.UpdateQuantity(context.Background(), userID, item.ID, 5)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestService_UpdateQuantityZeroRemovesLine(t *testing.T) {
	item := saleItem("Camping Mug", 12)
	store := newFakeStore()
	svc := newCartService(t, store, &fakeItems{items: map[uuid.UUID]*models.Item{item.ID: item}})

	userID := uuid.New()
	if _, err := svc.AddItem(context.Background(), userID, item.ID, 2); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	cart, err := svc.UpdateQuantity(context.Background(), userID, item.ID, 0)
	if err != nil {
		t.Fatalf("UpdateQuantity error: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}
}

func TestService_UpdateQuantityMissingLine(t *testing.T) {
	svc := newCartService(t, newFakeStore(), &fakeItems{items: map[uuid.UUID]*models.Item{}})

	_, err := svc.UpdateQuantity(context.Background(), uuid.New(), uuid.New(), 3)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_RemoveItem(t *testing.T) {
	itemA := saleItem("Mug", 12)
	itemB := saleItem("Plate", 8)
	store := newFakeStore()
	svc := newCartService(t, store, &fakeItems{items: map[uuid.UUID]*models.Item{
		itemA.ID: itemA,
		itemB.ID: itemB,
	}})

	userID := uuid.New()
	if _, err := svc.AddItem(context.Background(), userID, itemA.ID, 1); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), userID, itemB.ID, 1); err != nil {
		t.Fatalf("AddItem error: %v", err)
	}

	cart, err := svc.RemoveItem(context.Background(), userID, itemA.ID)
	if err != nil {
		t.Fatalf("RemoveItem error: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ItemID != itemB.ID {
		t.Fatalf("unexpected cart contents: %+v", cart.Items)
	}
}

func TestService_ClearDelegatesToStore(t *testing.T) {
	store := newFakeStore()
	svc := newCartService(t, store, &fakeItems{items: map[uuid.UUID]*models.Item{}})

	userID := uuid.New()
	if err := svc.Clear(context.Background(), userID); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if len(store.cleared) != 1 || store.cleared[0] != userID {
		t.Fatal("expected store clear to be called")
	}
}
