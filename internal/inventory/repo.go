package inventory

import (
	"context"

	"github.com/dmorales-dev/rentshop-backend/pkg/db/models"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for the append-only inventory ledger.
// Adjustments are only ever created or bulk-removed when their item is
// deleted; there is no update path.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, adjustment *models.InventoryAdjustment) error
	SumQuantityByItem(ctx context.Context, itemID uuid.UUID) (int, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.InventoryAdjustment, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.InventoryAdjustment, error)
	HasAdjustmentForOrder(ctx context.Context, orderID uuid.UUID, kind enums.AdjustmentKind) (bool, error)
	DeleteByItemID(ctx context.Context, itemID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, adjustment *models.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *repository) SumQuantityByItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryAdjustment{}).
		Where("item_id = ?", itemID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

func (r *repository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]models.InventoryAdjustment, error) {
	var adjustments []models.InventoryAdjustment
	if err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.InventoryAdjustment, error) {
	var adjustments []models.InventoryAdjustment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

func (r *repository) HasAdjustmentForOrder(ctx context.Context, orderID uuid.UUID, kind enums.AdjustmentKind) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryAdjustment{}).
		Where("order_id = ? AND kind = ?", orderID, kind).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) DeleteByItemID(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Delete(&models.InventoryAdjustment{}).Error
}
