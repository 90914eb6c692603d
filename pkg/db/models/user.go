package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cellflip/cellflip-backend/pkg/enums"
)

// User is the canonical identity entity for all three actor surfaces.
// Sellers and admins authenticate with email/password; riders log in via
// phone OTP, so their PasswordHash may be empty.
type User struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;type:text;not null"`
	Email        *string         `gorm:"column:email;type:text;uniqueIndex"`
	Phone        *string         `gorm:"column:phone;type:text;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;type:text;not null;default:''"`
	Role         enums.ActorRole `gorm:"column:role;type:text;not null"`
	IsActive     bool            `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
