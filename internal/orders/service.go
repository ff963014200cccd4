package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmorales-dev/rentshop-backend/internal/inventory"
	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/metrics"
	"github.com/dmorales-dev/rentshop-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the order state machine. Console operators may move an
// order freely among the non-terminal statuses; finished and cancelled are
// terminal. Cancelling returns each line item's stock to the ledger exactly
// once.
type Service interface {
	Transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actorUserID uuid.UUID) (*models.Order, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListPage(ctx context.Context, params pagination.Params) (*OrderPage, error)
	LedgerEntries(ctx context.Context, orderID uuid.UUID) ([]models.InventoryAdjustment, error)
}

type service struct {
	tx        txRunner
	repo      Repository
	inventory inventory.Repository
	metrics   *metrics.ShopMetrics
}

// NewService wires the orders service. Metrics may be nil.
func NewService(tx txRunner, repo Repository, inventoryRepo inventory.Repository, shopMetrics *metrics.ShopMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		inventory: inventoryRepo,
		metrics:   shopMetrics,
	}, nil
}

func (s *service) Transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, actorUserID uuid.UUID) (*models.Order, error) {
	if actorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", target))
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s and cannot change status", order.Status)).
			WithDetails(map[string]string{"status": order.Status.String()})
	}
	if order.Status == target {
		return order, nil
	}

	if target == enums.OrderStatusCancelled {
		if err := s.cancel(ctx, order, actorUserID); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.UpdateStatus(ctx, order.ID, target, actorUserID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
	}

	s.metrics.IncOrderTransition(order.Status.String(), target.String())
	order.Status = target
	order.UpdatedBy = &actorUserID
	return order, nil
}

// cancel flips the order to cancelled and appends one positive return
// adjustment per line item in the same transaction. The existence check makes
// the stock return idempotent even if a cancelled row was produced outside
// this path.
func (s *service) cancel(ctx context.Context, order *models.Order, actorUserID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.repo.WithTx(tx)
		inventoryRepo := s.inventory.WithTx(tx)

		returned, err := inventoryRepo.HasAdjustmentForOrder(ctx, order.ID, enums.AdjustmentKindOrderReturn)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check prior stock return")
		}
		if returned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order stock was already returned")
		}

		if err := ordersRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled, actorUserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		for _, line := range order.LineItems {
			adjustment := inventory.ReturnAdjustment(line.ItemID, line.Quantity, actorUserID, order.ID)
			if err := inventoryRepo.Create(ctx, adjustment); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock return")
			}
			s.metrics.IncAdjustment(enums.AdjustmentKindOrderReturn.String())
		}
		return nil
	})
}

func (s *service) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.load(ctx, orderID)
}

func (s *service) GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	return order, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) ListPage(ctx context.Context, params pagination.Params) (*OrderPage, error) {
	page, err := s.repo.ListPage(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

// LedgerEntries returns the inventory adjustments an order produced, the
// consumption rows from checkout and any return rows from cancellation.
func (s *service) LedgerEntries(ctx context.Context, orderID uuid.UUID) ([]models.InventoryAdjustment, error) {
	if _, err := s.load(ctx, orderID); err != nil {
		return nil, err
	}
	entries, err := s.inventory.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order adjustments")
	}
	return entries, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
