package models

import (
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a catalog entry. Stock is never stored here; availability is always
// derived from the inventory ledger.
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	AlertLevel  int             `gorm:"column:alert_level;not null;default:0"`
	Kind        enums.ItemKind  `gorm:"column:kind;type:text;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
