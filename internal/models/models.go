package models

import (
	"time"

	"github.com/ale3590/fares/internal/money"
)

// Product is a catalog entry. Prices are stored in cents.
type Product struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time   `json:"-"`
	UpdatedAt      time.Time   `json:"-"`
	Code           string      `gorm:"size:50;uniqueIndex;not null" json:"codigo"`
	Name           string      `gorm:"size:255;not null" json:"nombre"`
	Category       string      `gorm:"size:100" json:"categoria,omitempty"`
	PublicPrice    money.Cents `gorm:"not null;default:0" json:"precio_publico"`
	WholesalePrice money.Cents `gorm:"not null;default:0" json:"precio_mayorista"`
	Stock          int         `gorm:"not null;default:0" json:"stock"`
	MinStock       int         `gorm:"not null;default:0" json:"existencia_minima"`
	Inactive       bool        `gorm:"not null;default:false" json:"inactivo"`
}

// LowStock reports whether stock is at or below the minimum.
func (p *Product) LowStock() bool { return p.Stock <= p.MinStock }

// Client is a customer. TaxID (NIT) is the natural key.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Code      string    `gorm:"size:50" json:"codigo,omitempty"`
	Name      string    `gorm:"size:255;not null" json:"nombre"`
	TaxID     string    `gorm:"size:30;uniqueIndex;not null" json:"nit"`
	Address   string    `gorm:"size:255" json:"direccion,omitempty"`
	Phone     string    `gorm:"size:30" json:"telefono,omitempty"`
	Email     string    `gorm:"size:255" json:"correo,omitempty"`
}

// Supplier provides merchandise.
type Supplier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Code      string    `gorm:"size:50" json:"codigo,omitempty"`
	Name      string    `gorm:"size:255;not null" json:"nombre"`
	TaxID     string    `gorm:"size:30" json:"nit,omitempty"`
	Contact   string    `gorm:"size:255" json:"contacto,omitempty"`
	Phone     string    `gorm:"size:30" json:"telefono,omitempty"`
	Email     string    `gorm:"size:255" json:"correo,omitempty"`
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&User{}, &Product{}, &Client{}, &Supplier{},
		&Sale{}, &SaleItem{}, &Purchase{}, &PurchaseItem{}, &AuditLog{},
	}
}
