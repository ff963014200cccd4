package rentals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	pkgerrors "github.com/dmorales-dev/rentshop-backend/pkg/errors"
	"github.com/dmorales-dev/rentshop-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemSource loads catalog items for rental validation.
type ItemSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

// StockSource reports how many units of an item are free to rent, net of the
// holds already active. Satisfied by the inventory service.
type StockSource interface {
	Available(ctx context.Context, itemID uuid.UUID) (int, error)
}

// Service drives the rental hold lifecycle: a pending request carries no
// stock effect, finalizing it activates the hold, and completion or expiry
// releases it.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*models.Rental, error)
	Finalize(ctx context.Context, rentalID uuid.UUID, input FinalizeInput) (*models.Rental, error)
	Cancel(ctx context.Context, rentalID, actorUserID uuid.UUID, actorRole enums.UserRole) error
	Complete(ctx context.Context, rentalID uuid.UUID, input SettleInput) (*models.Rental, error)
	Expire(ctx context.Context, rentalID uuid.UUID) (*models.Rental, error)
	GetByID(ctx context.Context, rentalID uuid.UUID) (*models.Rental, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Rental, error)
	ListAll(ctx context.Context) ([]models.Rental, error)
}

type service struct {
	repo    Repository
	items   ItemSource
	stock   StockSource
	metrics *metrics.ShopMetrics
	now     func() time.Time
}

// RequestInput opens a pending rental hold for a renter and item.
type RequestInput struct {
	ItemID   uuid.UUID
	UserID   uuid.UUID
	Quantity int
	Notes    *string
}

// FinalizeInput carries the pickup contract details that turn a pending
// request into an active hold.
type FinalizeInput struct {
	PickupDate    time.Time
	DueDate       time.Time
	Phone         string
	Address       string
	Notes         *string
	DepositAmount *decimal.Decimal
	TotalAmount   *decimal.Decimal
}

// SettleInput carries the optional final amount recorded when a rental is
// returned and closed out.
type SettleInput struct {
	FinalAmount *decimal.Decimal
}

// NewService wires the rentals service. Metrics may be nil.
func NewService(repo Repository, items ItemSource, stock StockSource, shopMetrics *metrics.ShopMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rentals repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("item source required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock source required")
	}
	return &service{
		repo:    repo,
		items:   items,
		stock:   stock,
		metrics: shopMetrics,
		now:     time.Now,
	}, nil
}

func (s *service) Request(ctx context.Context, input RequestInput) (*models.Rental, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	item, err := s.items.GetByID(ctx, input.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if item.Kind != enums.ItemKindRent {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item is not rentable")
	}

	pending, err := s.repo.HasPendingForItem(ctx, input.UserID, input.ItemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending rentals")
	}
	if pending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pending rental for this item already exists")
	}

	if err := s.checkStock(ctx, input.ItemID, quantity); err != nil {
		return nil, err
	}

	added := s.now()
	rental := &models.Rental{
		ItemID:    input.ItemID,
		UserID:    input.UserID,
		ItemName:  item.Name,
		Quantity:  quantity,
		Status:    enums.RentalStatusPending,
		Notes:     input.Notes,
		DateAdded: &added,
	}
	if err := s.repo.Create(ctx, rental); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rental")
	}
	return rental, nil
}

func (s *service) Finalize(ctx context.Context, rentalID uuid.UUID, input FinalizeInput) (*models.Rental, error) {
	if input.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone required")
	}
	if input.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address required")
	}
	if input.PickupDate.IsZero() || input.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup and due dates required")
	}
	// Pickup must be tomorrow or later relative to the day the hold is
	// finalized, and the due date strictly after the pickup.
	tomorrow := startOfDay(s.now()).AddDate(0, 0, 1)
	if input.PickupDate.Before(tomorrow) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup date must be at least tomorrow")
	}
	if !input.DueDate.After(input.PickupDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date must be after pickup date")
	}

	rental, err := s.load(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != enums.RentalStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending rentals can be finalized")
	}
	// Stock may have drained while the request sat pending; the hold only
	// activates if it is still covered.
	if err := s.checkStock(ctx, rental.ItemID, rental.Quantity); err != nil {
		return nil, err
	}

	pickup := input.PickupDate
	due := input.DueDate
	duration := durationDays(pickup, due)

	rental.Status = enums.RentalStatusActive
	rental.PickupDate = &pickup
	rental.DueDate = &due
	rental.DurationDays = &duration
	rental.Phone = &input.Phone
	rental.Address = &input.Address
	if input.Notes != nil {
		rental.Notes = input.Notes
	}
	rental.DepositAmount = input.DepositAmount
	rental.TotalAmount = input.TotalAmount

	if err := s.repo.Update(ctx, rental); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rental")
	}
	return rental, nil
}

func (s *service) Cancel(ctx context.Context, rentalID, actorUserID uuid.UUID, actorRole enums.UserRole) error {
	rental, err := s.load(ctx, rentalID)
	if err != nil {
		return err
	}
	if rental.UserID != actorUserID && !actorRole.IsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "rental does not belong to user")
	}
	if rental.Status != enums.RentalStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending rentals can be cancelled")
	}

	rental.Status = enums.RentalStatusCancelled
	if err := s.repo.Update(ctx, rental); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rental")
	}
	s.metrics.IncRentalOutcome(enums.RentalStatusCancelled.String())
	return nil
}

func (s *service) Complete(ctx context.Context, rentalID uuid.UUID, input SettleInput) (*models.Rental, error) {
	rental, err := s.load(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != enums.RentalStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only active rentals can be completed")
	}

	completed := s.now()
	rental.Status = enums.RentalStatusCompleted
	rental.CompletedAt = &completed
	if input.FinalAmount != nil {
		rental.FinalAmount = input.FinalAmount
	}
	if err := s.repo.Update(ctx, rental); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rental")
	}
	s.metrics.IncRentalOutcome(enums.RentalStatusCompleted.String())
	return rental, nil
}

func (s *service) Expire(ctx context.Context, rentalID uuid.UUID) (*models.Rental, error) {
	rental, err := s.load(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.Status != enums.RentalStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only active rentals can expire")
	}

	rental.Status = enums.RentalStatusExpired
	if err := s.repo.Update(ctx, rental); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rental")
	}
	s.metrics.IncRentalOutcome(enums.RentalStatusExpired.String())
	return rental, nil
}

func (s *service) GetByID(ctx context.Context, rentalID uuid.UUID) (*models.Rental, error) {
	return s.load(ctx, rentalID)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Rental, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rentals, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rentals")
	}
	return rentals, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.Rental, error) {
	rentals, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rentals")
	}
	return rentals, nil
}

// checkStock rejects a hold quantity that exceeds what is left to rent.
func (s *service) checkStock(ctx context.Context, itemID uuid.UUID, quantity int) error {
	available, err := s.stock.Available(ctx, itemID)
	if err != nil {
		return err
	}
	if quantity > available {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
			WithDetails(map[string]any{"item_id": itemID, "available": available})
	}
	return nil
}

func (s *service) load(ctx context.Context, rentalID uuid.UUID) (*models.Rental, error) {
	if rentalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rental id required")
	}
	rental, err := s.repo.GetByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rental not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rental")
	}
	return rental, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func durationDays(pickup, due time.Time) int {
	days := int(due.Sub(pickup).Hours() / 24)
	if due.Sub(pickup)%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}
