package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemSource loads catalog items when a line is added to the cart.
type ItemSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

// StockSource reports how many units of an item are left to sell. Satisfied
// by the inventory service.
type StockSource interface {
	Available(ctx context.Context, itemID uuid.UUID) (int, error)
}

// Service exposes the session cart operations. Carts hold sale items only;
// rentals go through the rental request flow.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)
	AddItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*Cart, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	store Store
	items ItemSource
	stock StockSource
}

// NewService wires the cart service with its store, catalog source and stock
// source.
func NewService(store Store, items ItemSource, stock StockSource) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if items == nil {
		return nil, fmt.Errorf("item source required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock source required")
	}
	return &service{store: store, items: items, stock: stock}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cart, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) AddItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if item.Kind != enums.ItemKindSale {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item is not for sale")
	}

	// The cart line, merged or new, may never exceed the sellable stock.
	wanted := quantity
	for i := range cart.Items {
		if cart.Items[i].ItemID == itemID {
			wanted += cart.Items[i].Quantity
			break
		}
	}
	if err := s.checkStock(ctx, itemID, wanted); err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ItemID == itemID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, CartItem{
			ItemID:    item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  quantity,
		})
	}

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return cart, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*Cart, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range cart.Items {
		if cart.Items[i].ItemID == itemID {
			if err := s.checkStock(ctx, itemID, quantity); err != nil {
				return nil, err
			}
			cart.Items[i].Quantity = quantity
			if err := s.store.Save(ctx, cart); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
			}
			return cart, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
}

// checkStock rejects a requested quantity that exceeds the item's current
// availability.
func (s *service) checkStock(ctx context.Context, itemID uuid.UUID, wanted int) error {
	available, err := s.stock.Available(ctx, itemID)
	if err != nil {
		return err
	}
	if wanted > available {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
			WithDetails(map[string]any{"item_id": itemID, "available": available})
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	removed := false
	for _, line := range cart.Items {
		if line.ItemID == itemID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	cart.Items = kept

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return cart, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.store.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
