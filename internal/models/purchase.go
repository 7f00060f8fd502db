package models

import (
	"fmt"
	"time"

	"github.com/ale3590/fares/internal/money"
)

// Purchase is a merchandise receipt from a supplier.
type Purchase struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Number         string         `gorm:"size:30;uniqueIndex;not null" json:"numero_factura"`
	SupplierID     uint           `gorm:"index;not null" json:"proveedor_id"`
	Supplier       *Supplier      `gorm:"foreignKey:SupplierID" json:"-"`
	UserID         uint           `gorm:"index" json:"usuario_id"`
	Total          money.Cents    `gorm:"not null" json:"total"`
	Status         string         `gorm:"size:20;not null;default:'completada'" json:"estado"`
	IdempotencyKey *string        `gorm:"size:64;uniqueIndex" json:"-"`
	Date           time.Time      `gorm:"not null;index" json:"fecha"`
	Items          []PurchaseItem `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// PurchaseItem is one received line.
type PurchaseItem struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	PurchaseID uint        `gorm:"index;not null" json:"compra_id"`
	ProductID  uint        `gorm:"index;not null" json:"producto_id"`
	Product    *Product    `gorm:"foreignKey:ProductID" json:"-"`
	Quantity   int         `gorm:"not null" json:"cantidad"`
	Price      money.Cents `gorm:"not null" json:"precio"`
	Subtotal   money.Cents `gorm:"not null" json:"subtotal"`
}

func PurchaseNumber(id uint) string { return fmt.Sprintf("C-%06d", id) }

// PurchaseSummary is the list form of a purchase.
type PurchaseSummary struct {
	ID           uint        `json:"id"`
	Number       string      `json:"numero_factura"`
	SupplierID   uint        `json:"proveedor_id"`
	SupplierName string      `json:"proveedor_nombre"`
	Total        money.Cents `json:"total"`
	Date         time.Time   `json:"fecha"`
	Status       string      `json:"estado"`
}

func (p *Purchase) Summary() PurchaseSummary {
	out := PurchaseSummary{ID: p.ID, Number: p.Number, SupplierID: p.SupplierID, Total: p.Total, Date: p.Date, Status: p.Status}
	if p.Supplier != nil {
		out.SupplierName = p.Supplier.Name
	}
	return out
}

// PurchaseDetail is a purchase with its lines.
type PurchaseDetail struct {
	PurchaseSummary
	Items []LineDetail `json:"items"`
}

func (p *Purchase) Detail() PurchaseDetail {
	out := PurchaseDetail{PurchaseSummary: p.Summary(), Items: make([]LineDetail, len(p.Items))}
	for i, it := range p.Items {
		out.Items[i] = lineDetail(it.Product, LineDetail{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price, Subtotal: it.Subtotal})
	}
	return out
}
