package rentals

import (
	"context"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for rental holds. It also serves as the
// inventory hold source: only active rentals count against availability.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rental *models.Rental) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	Update(ctx context.Context, rental *models.Rental) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Rental, error)
	ListByStatuses(ctx context.Context, statuses []enums.RentalStatus) ([]models.Rental, error)
	ListAll(ctx context.Context) ([]models.Rental, error)
	HasPendingForItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	ExistsForItem(ctx context.Context, itemID uuid.UUID) (bool, error)
	SumActiveHoldQuantity(ctx context.Context, itemID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a rentals repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rental *models.Rental) error {
	return r.db.WithContext(ctx).Create(rental).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	var rental models.Rental
	if err := r.db.WithContext(ctx).First(&rental, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *repository) Update(ctx context.Context, rental *models.Rental) error {
	return r.db.WithContext(ctx).Save(rental).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Rental, error) {
	var rentals []models.Rental
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *repository) ListByStatuses(ctx context.Context, statuses []enums.RentalStatus) ([]models.Rental, error) {
	var rentals []models.Rental
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.Rental, error) {
	var rentals []models.Rental
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

func (r *repository) HasPendingForItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Rental{}).
		Where("user_id = ? AND item_id = ? AND status = ?", userID, itemID, enums.RentalStatusPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ExistsForItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Rental{}).
		Where("item_id = ?", itemID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) SumActiveHoldQuantity(ctx context.Context, itemID uuid.UUID) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Rental{}).
		Where("item_id = ? AND status = ?", itemID, enums.RentalStatusActive).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}
