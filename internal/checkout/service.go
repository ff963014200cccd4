package checkout

import (
	"context"
	"fmt"

	"github.com/dmorales-dev/rentshop-backend/internal/cart"
	"github.com/dmorales-dev/rentshop-backend/internal/inventory"
	"github.com/dmorales-dev/rentshop-backend/internal/orders"
	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/logger"
	"github.com/dmorales-dev/rentshop-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a session cart into an order. Each line's ledger balance is
// verified and the order row plus one negative consumption adjustment per
// line are written in a single transaction; the cart is cleared only after
// the transaction commits.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error)
}

type service struct {
	tx        txRunner
	carts     cart.Service
	orders    orders.Repository
	inventory inventory.Repository
	logger    *logger.Logger
	metrics   *metrics.ShopMetrics
}

// CheckoutInput carries the shipping and contact details for a new order.
type CheckoutInput struct {
	UserID        uuid.UUID
	CustomerName  string
	CustomerEmail string
	ShipStreet    string
	ShipCity      string
	ShipProvince  string
	ShipZip       string
	ShipPhone     string
}

// NewService wires the checkout service. Metrics may be nil.
func NewService(tx txRunner, carts cart.Service, ordersRepo orders.Repository, inventoryRepo inventory.Repository, logg *logger.Logger, shopMetrics *metrics.ShopMetrics) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:        tx,
		carts:     carts,
		orders:    ordersRepo,
		inventory: inventoryRepo,
		logger:    logg,
		metrics:   shopMetrics,
	}, nil
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.CustomerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if input.CustomerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}

	sessionCart, err := s.carts.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if len(sessionCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order := &models.Order{
		UserID:        input.UserID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		ShipStreet:    input.ShipStreet,
		ShipCity:      input.ShipCity,
		ShipProvince:  input.ShipProvince,
		ShipZip:       input.ShipZip,
		ShipPhone:     input.ShipPhone,
		Status:        enums.OrderStatusPending,
		TotalAmount:   sessionCart.Subtotal(),
	}
	for _, line := range sessionCart.Items {
		order.LineItems = append(order.LineItems, models.OrderLineItem{
			ItemID:    line.ItemID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ledger := s.inventory.WithTx(tx)

		// Re-read each line's ledger balance inside the transaction so a
		// stale cart cannot drive the stock negative.
		for _, line := range sessionCart.Items {
			balance, err := ledger.SumQuantityByItem(ctx, line.ItemID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum item stock")
			}
			if line.Quantity > balance {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
					WithDetails(map[string]any{"item_id": line.ItemID, "name": line.Name, "available": balance})
			}
		}

		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		for _, line := range sessionCart.Items {
			adjustment := inventory.ConsumptionAdjustment(line.ItemID, line.Quantity, input.UserID, order.ID)
			if err := ledger.Create(ctx, adjustment); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock consumption")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for range sessionCart.Items {
		s.metrics.IncAdjustment(enums.AdjustmentKindOrderConsumption.String())
	}

	// The order is committed at this point; a cart that fails to clear is
	// only a cosmetic leftover, so log and move on.
	if err := s.carts.Clear(ctx, input.UserID); err != nil {
		s.logger.Warn(ctx, fmt.Sprintf("clear cart after checkout: %v", err))
	}
	return order, nil
}
