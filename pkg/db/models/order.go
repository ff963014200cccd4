package models

import (
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a storefront purchase. TotalAmount is the canonical figure; the
// nullable LegacyTotal column carries records imported from the old shop
// schema, which stored a single pre-computed total and no line items.
type Order struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	CustomerName  string            `gorm:"column:customer_name;not null"`
	CustomerEmail string            `gorm:"column:customer_email;not null"`
	ShipStreet    string            `gorm:"column:ship_street;not null;default:''"`
	ShipCity      string            `gorm:"column:ship_city;not null;default:''"`
	ShipProvince  string            `gorm:"column:ship_province;not null;default:''"`
	ShipZip       string            `gorm:"column:ship_zip;not null;default:''"`
	ShipPhone     string            `gorm:"column:ship_phone;not null;default:''"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending';index"`
	TotalAmount   decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	LegacyTotal   *decimal.Decimal  `gorm:"column:legacy_total;type:numeric(12,2)"`
	UpdatedBy     *uuid.UUID        `gorm:"column:updated_by;type:uuid"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	LineItems []OrderLineItem `gorm:"foreignKey:OrderID"`
}

// OrderLineItem snapshots an item's name and unit price at checkout time.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ItemID    uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	Name      string          `gorm:"column:name;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
}
