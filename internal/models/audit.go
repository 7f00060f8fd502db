package models

import "time"

// AuditLog records who changed what.
type AuditLog struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index"`
	EntityType string `gorm:"size:50"` // "Sale", "Purchase", "Client"
	EntityID   uint
	Action     string `gorm:"size:20"` // "create", "update", "delete"
	Detail     string `gorm:"size:500"`
	CreatedAt  time.Time
}
