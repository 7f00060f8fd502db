package models

import (
	"fmt"
	"time"

	"github.com/ale3590/fares/internal/money"
)

const StatusCompleted = "completada"

// Sale is a recorded invoice or point-of-sale ticket.
type Sale struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	Number         string      `gorm:"size:30;uniqueIndex;not null" json:"numero_venta"`
	ClientID       uint        `gorm:"index;not null" json:"cliente_id"`
	Client         *Client     `gorm:"foreignKey:ClientID" json:"-"`
	UserID         uint        `gorm:"index" json:"usuario_id"`
	Total          money.Cents `gorm:"not null" json:"total"`
	Status         string      `gorm:"size:20;not null;default:'completada'" json:"estado"`
	IdempotencyKey *string     `gorm:"size:64;uniqueIndex" json:"-"`
	Date           time.Time   `gorm:"not null;index" json:"fecha"`
	Items          []SaleItem  `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// SaleItem is one line of a sale.
type SaleItem struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	SaleID    uint        `gorm:"index;not null" json:"venta_id"`
	ProductID uint        `gorm:"index;not null" json:"producto_id"`
	Product   *Product    `gorm:"foreignKey:ProductID" json:"-"`
	Quantity  int         `gorm:"not null" json:"cantidad"`
	Price     money.Cents `gorm:"not null" json:"precio"`
	Discount  float64     `gorm:"not null;default:0" json:"descuento"`
	Subtotal  money.Cents `gorm:"not null" json:"subtotal"`
}

// SaleNumber formats the public number of a sale id.
func SaleNumber(id uint) string { return fmt.Sprintf("V-%06d", id) }

// SaleSummary is the list form of a sale.
type SaleSummary struct {
	ID         uint        `json:"id"`
	Number     string      `json:"numero_venta"`
	ClientID   uint        `json:"cliente_id"`
	ClientName string      `json:"cliente_nombre"`
	Total      money.Cents `json:"total"`
	Date       time.Time   `json:"fecha"`
	Status     string      `json:"estado"`
}

// Summary requires Client to be preloaded for the name.
func (s *Sale) Summary() SaleSummary {
	out := SaleSummary{ID: s.ID, Number: s.Number, ClientID: s.ClientID, Total: s.Total, Date: s.Date, Status: s.Status}
	if s.Client != nil {
		out.ClientName = s.Client.Name
	}
	return out
}

// LineDetail is an order line with its product named.
type LineDetail struct {
	ProductID uint        `json:"producto_id"`
	Code      string      `json:"codigo"`
	Name      string      `json:"nombre"`
	Quantity  int         `json:"cantidad"`
	Price     money.Cents `json:"precio"`
	Discount  float64     `json:"descuento"`
	Subtotal  money.Cents `json:"subtotal"`
}

func lineDetail(p *Product, d LineDetail) LineDetail {
	if p != nil {
		d.Code, d.Name = p.Code, p.Name
	}
	return d
}

// SaleDetail is a sale with its lines.
type SaleDetail struct {
	SaleSummary
	Items []LineDetail `json:"items"`
}

// Detail requires Client and Items.Product to be preloaded for the names.
func (s *Sale) Detail() SaleDetail {
	out := SaleDetail{SaleSummary: s.Summary(), Items: make([]LineDetail, len(s.Items))}
	for i, it := range s.Items {
		out.Items[i] = lineDetail(it.Product, LineDetail{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price, Discount: it.Discount, Subtotal: it.Subtotal})
	}
	return out
}
