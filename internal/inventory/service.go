package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/metrics"
	"github.com/google/uuid"
)

// HoldSource reports how many units of an item are held by active rentals.
// Implemented by the rentals repository; pending requests never count.
type HoldSource interface {
	SumActiveHoldQuantity(ctx context.Context, itemID uuid.UUID) (int, error)
}

// Availability is the derived stock position for one item. Raw preserves the
// true ledger balance, which may be negative; Available clamps it for
// presentation.
type Availability struct {
	Raw       int
	Available int
	Status    enums.StockStatus
}

// Service exposes the inventory ledger operations. Every mutation appends a
// new adjustment; nothing ever edits or removes a prior entry.
type Service interface {
	Available(ctx context.Context, itemID uuid.UUID) (int, error)
	Availability(ctx context.Context, item *models.Item) (Availability, error)
	RecordInitialStock(ctx context.Context, input InitialStockInput) (*models.InventoryAdjustment, error)
	Restock(ctx context.Context, input RestockInput) (*models.InventoryAdjustment, error)
	BulkRestock(ctx context.Context, input BulkRestockInput) ([]BulkRestockResult, error)
	EditQuantity(ctx context.Context, input EditQuantityInput) (*models.InventoryAdjustment, error)
	History(ctx context.Context, itemID uuid.UUID) ([]models.InventoryAdjustment, error)
}

type service struct {
	repo    Repository
	holds   HoldSource
	metrics *metrics.ShopMetrics
}

// InitialStockInput seeds the ledger for a newly created item.
type InitialStockInput struct {
	ItemID      uuid.UUID
	Quantity    int
	ActorUserID uuid.UUID
	Note        *string
}

// RestockInput adds stock for a single item.
type RestockInput struct {
	ItemID      uuid.UUID
	Quantity    int
	ActorUserID uuid.UUID
	Note        *string
}

// BulkRestockInput adds stock for several items in one call.
type BulkRestockInput struct {
	Quantities  map[uuid.UUID]int
	ActorUserID uuid.UUID
}

// BulkRestockResult reports the outcome for one item of a bulk restock. A bad
// quantity marks that item failed without aborting the rest of the batch.
type BulkRestockResult struct {
	ItemID uuid.UUID
	Err    error
}

// EditQuantityInput sets an item's available quantity to a target value. The
// service records the signed difference from the current balance.
type EditQuantityInput struct {
	ItemID      uuid.UUID
	NewQuantity int
	ActorUserID uuid.UUID
	Note        *string
}

// NewService wires the inventory service with its ledger repository and the
// rental hold source. Metrics may be nil.
func NewService(repo Repository, holds HoldSource, shopMetrics *metrics.ShopMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if holds == nil {
		return nil, fmt.Errorf("rental hold source required")
	}
	return &service{repo: repo, holds: holds, metrics: shopMetrics}, nil
}

func (s *service) Available(ctx context.Context, itemID uuid.UUID) (int, error) {
	if itemID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	balance, err := s.repo.SumQuantityByItem(ctx, itemID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum inventory adjustments")
	}
	held, err := s.holds.SumActiveHoldQuantity(ctx, itemID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum active rental holds")
	}
	return balance - held, nil
}

func (s *service) Availability(ctx context.Context, item *models.Item) (Availability, error) {
	if item == nil {
		return Availability{}, pkgerrors.New(pkgerrors.CodeValidation, "item required")
	}
	raw, err := s.Available(ctx, item.ID)
	if err != nil {
		return Availability{}, err
	}
	clamped := raw
	if clamped < 0 {
		clamped = 0
	}
	return Availability{
		Raw:       raw,
		Available: clamped,
		Status:    enums.ClassifyStock(raw, item.AlertLevel),
	}, nil
}

func (s *service) RecordInitialStock(ctx context.Context, input InitialStockInput) (*models.InventoryAdjustment, error) {
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial stock cannot be negative")
	}
	return s.append(ctx, &models.InventoryAdjustment{
		ItemID:      input.ItemID,
		Quantity:    input.Quantity,
		Kind:        enums.AdjustmentKindInitialStock,
		ActorUserID: input.ActorUserID,
		Note:        input.Note,
	})
}

func (s *service) Restock(ctx context.Context, input RestockInput) (*models.InventoryAdjustment, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}
	return s.append(ctx, &models.InventoryAdjustment{
		ItemID:      input.ItemID,
		Quantity:    input.Quantity,
		Kind:        enums.AdjustmentKindRestock,
		ActorUserID: input.ActorUserID,
		Note:        input.Note,
	})
}

func (s *service) BulkRestock(ctx context.Context, input BulkRestockInput) ([]BulkRestockResult, error) {
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if len(input.Quantities) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items to restock")
	}

	ids := make([]uuid.UUID, 0, len(input.Quantities))
	for id := range input.Quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	results := make([]BulkRestockResult, 0, len(ids))
	for _, id := range ids {
		qty := input.Quantities[id]
		result := BulkRestockResult{ItemID: id}
		if qty <= 0 {
			result.Err = pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
			results = append(results, result)
			continue
		}
		if _, err := s.append(ctx, &models.InventoryAdjustment{
			ItemID:      id,
			Quantity:    qty,
			Kind:        enums.AdjustmentKindBulkRestock,
			ActorUserID: input.ActorUserID,
		}); err != nil {
			result.Err = err
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *service) EditQuantity(ctx context.Context, input EditQuantityInput) (*models.InventoryAdjustment, error) {
	if input.NewQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target quantity cannot be negative")
	}
	current, err := s.Available(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	delta := input.NewQuantity - current
	if delta == 0 {
		return nil, nil
	}
	return s.append(ctx, &models.InventoryAdjustment{
		ItemID:      input.ItemID,
		Quantity:    delta,
		Kind:        enums.AdjustmentKindManualEdit,
		ActorUserID: input.ActorUserID,
		Note:        input.Note,
	})
}

func (s *service) History(ctx context.Context, itemID uuid.UUID) ([]models.InventoryAdjustment, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	adjustments, err := s.repo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory adjustments")
	}
	return adjustments, nil
}

func (s *service) append(ctx context.Context, adjustment *models.InventoryAdjustment) (*models.InventoryAdjustment, error) {
	if adjustment.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if adjustment.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if err := s.repo.Create(ctx, adjustment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append inventory adjustment")
	}
	s.metrics.IncAdjustment(adjustment.Kind.String())
	return adjustment, nil
}

// ConsumptionAdjustment builds the negative ledger entry that checkout
// appends for one order line. The quantity sign is applied here so callers
// always pass the positive ordered amount.
func ConsumptionAdjustment(itemID uuid.UUID, quantity int, actorUserID, orderID uuid.UUID) *models.InventoryAdjustment {
	oid := orderID
	return &models.InventoryAdjustment{
		ItemID:      itemID,
		Quantity:    -quantity,
		Kind:        enums.AdjustmentKindOrderConsumption,
		ActorUserID: actorUserID,
		OrderID:     &oid,
	}
}

// ReturnAdjustment builds the positive ledger entry that order cancellation
// appends for one order line.
func ReturnAdjustment(itemID uuid.UUID, quantity int, actorUserID, orderID uuid.UUID) *models.InventoryAdjustment {
	oid := orderID
	return &models.InventoryAdjustment{
		ItemID:      itemID,
		Quantity:    quantity,
		Kind:        enums.AdjustmentKindOrderReturn,
		ActorUserID: actorUserID,
		OrderID:     &oid,
	}
}
