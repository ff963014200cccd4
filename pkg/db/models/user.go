package models

import (
	"time"

	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	"github.com/google/uuid"
)

// User represents a shop account, customer or console operator.
type User struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Name         string           `gorm:"column:name;not null"`
	Phone        *string          `gorm:"column:phone"`
	Address      *string          `gorm:"column:address"`
	Role         enums.UserRole   `gorm:"column:role;type:text;not null;default:'user'"`
	Status       enums.UserStatus `gorm:"column:status;type:text;not null;default:'active'"`
	LastLoginAt  *time.Time       `gorm:"column:last_login_at"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
