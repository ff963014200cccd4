package models

import (
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	"github.com/google/uuid"
)

// InventoryAdjustment is one immutable entry in the per-item stock ledger.
// Corrections are made by appending an offsetting entry, never by editing a
// prior one.
type InventoryAdjustment struct {
	ID          uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID      uuid.UUID            `gorm:"column:item_id;type:uuid;not null;index"`
	Quantity    int                  `gorm:"column:quantity;not null"`
	Kind        enums.AdjustmentKind `gorm:"column:kind;type:text;not null"`
	ActorUserID uuid.UUID            `gorm:"column:actor_user_id;type:uuid;not null"`
	OrderID     *uuid.UUID           `gorm:"column:order_id;type:uuid;index"`
	Note        *string              `gorm:"column:note"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
