package models

import (
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rental is a hold on rentable stock. A pending rental is an informational
// request only; stock is deducted from availability while status is active.
// The nullable amount and date columns mirror the historical shop schema,
// where several field spellings coexisted; readers resolve them through the
// reports package rather than at each call site.
type Rental struct {
	ID       uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID   uuid.UUID          `gorm:"column:item_id;type:uuid;not null;index"`
	UserID   uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	ItemName string             `gorm:"column:item_name;not null"`
	Quantity int                `gorm:"column:quantity;not null;default:1"`
	Status   enums.RentalStatus `gorm:"column:status;type:text;not null;default:'pending';index"`

	PickupDate   *time.Time `gorm:"column:pickup_date"`
	DueDate      *time.Time `gorm:"column:due_date"`
	DurationDays *int       `gorm:"column:duration_days"`
	Phone        *string    `gorm:"column:phone"`
	Address      *string    `gorm:"column:address"`
	Notes        *string    `gorm:"column:notes"`

	FinalAmount   *decimal.Decimal `gorm:"column:final_amount;type:numeric(12,2)"`
	TotalAmount   *decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	DepositAmount *decimal.Decimal `gorm:"column:deposit_amount;type:numeric(12,2)"`

	CompletedAt         *time.Time `gorm:"column:completed_at"`
	LegacyDateCompleted *time.Time `gorm:"column:legacy_date_completed"`
	DateAdded           *time.Time `gorm:"column:date_added"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
