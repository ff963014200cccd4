package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmorales-dev/rentshop-backend/internal/inventory"
	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RentalSource reports whether any rental rows still reference an item.
// Satisfied by the rentals repository.
type RentalSource interface {
	ExistsForItem(ctx context.Context, itemID uuid.UUID) (bool, error)
}

// Service manages the item catalog. Creating an item seeds its ledger with an
// initial-stock entry; deleting one removes the item together with its whole
// adjustment history. An item referenced by rental rows cannot be deleted.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Item, error)
	Update(ctx context.Context, itemID uuid.UUID, input UpdateInput) (*models.Item, error)
	Delete(ctx context.Context, itemID uuid.UUID) error
	GetByID(ctx context.Context, itemID uuid.UUID) (*models.Item, error)
	ListAll(ctx context.Context) ([]models.Item, error)
}

type service struct {
	tx        txRunner
	repo      Repository
	inventory inventory.Repository
	rentals   RentalSource
	metrics   *metrics.ShopMetrics
}

// CreateInput describes a new catalog item and its starting stock.
type CreateInput struct {
	Name            string
	Description     string
	Price           decimal.Decimal
	AlertLevel      int
	Kind            enums.ItemKind
	InitialQuantity int
	ActorUserID     uuid.UUID
}

// UpdateInput carries partial catalog edits; nil fields are left untouched.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	AlertLevel  *int
}

// NewService wires the catalog service. Metrics may be nil.
func NewService(tx txRunner, repo Repository, inventoryRepo inventory.Repository, rentalSource RentalSource, shopMetrics *metrics.ShopMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if rentalSource == nil {
		return nil, fmt.Errorf("rental source required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		inventory: inventoryRepo,
		rentals:   rentalSource,
		metrics:   shopMetrics,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Item, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.AlertLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "alert level cannot be negative")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid item kind %q", input.Kind))
	}
	if input.InitialQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity cannot be negative")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}

	item := &models.Item{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		AlertLevel:  input.AlertLevel,
		Kind:        input.Kind,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
		}
		if err := s.inventory.WithTx(tx).Create(ctx, &models.InventoryAdjustment{
			ItemID:      item.ID,
			Quantity:    input.InitialQuantity,
			Kind:        enums.AdjustmentKindInitialStock,
			ActorUserID: input.ActorUserID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed initial stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAdjustment(enums.AdjustmentKindInitialStock.String())
	return item, nil
}

func (s *service) Update(ctx context.Context, itemID uuid.UUID, input UpdateInput) (*models.Item, error) {
	item, err := s.load(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name required")
		}
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		item.Price = *input.Price
	}
	if input.AlertLevel != nil {
		if *input.AlertLevel < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "alert level cannot be negative")
		}
		item.AlertLevel = *input.AlertLevel
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item")
	}
	return item, nil
}

// Delete removes the item and its entire ledger history in one transaction.
// Rental rows snapshot the item name but still reference the item row, so a
// rented item is refused instead of tripping the foreign key.
func (s *service) Delete(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.load(ctx, itemID); err != nil {
		return err
	}
	rented, err := s.rentals.ExistsForItem(ctx, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check item rentals")
	}
	if rented {
		return pkgerrors.New(pkgerrors.CodeConflict, "item has rental history and cannot be deleted")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.inventory.WithTx(tx).DeleteByItemID(ctx, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item adjustments")
		}
		if err := s.repo.WithTx(tx).Delete(ctx, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
		}
		return nil
	})
}

func (s *service) GetByID(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	return s.load(ctx, itemID)
}

func (s *service) ListAll(ctx context.Context) ([]models.Item, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return items, nil
}

func (s *service) load(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	return item, nil
}
