package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleSeller = "vendedor"
)

// User is an account of the ERP.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password     string         `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role         string         `gorm:"size:30;not null;default:'vendedor'" json:"rol"`
	Active       bool           `gorm:"not null;default:true" json:"activo"`
	ProfileImage string         `gorm:"size:500" json:"imagen_perfil,omitempty"`
}
