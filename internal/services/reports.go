package services

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/ale3590/fares/internal/models"
	"github.com/ale3590/fares/internal/money"
)

// Movement kinds of a kardex entry.
const (
	MovementIn  = "entrada"
	MovementOut = "salida"
)

// KardexEntry is one stock movement of a product.
type KardexEntry struct {
	Date     time.Time   `json:"fecha"`
	Document string      `json:"documento"`
	Kind     string      `json:"tipo"`
	In       int         `json:"entrada"`
	Out      int         `json:"salida"`
	Price    money.Cents `json:"precio"`
	Balance  int         `json:"saldo"`
}

// Kardex is the movement history of a product, oldest first. Opening is the
// stock before the first recorded movement.
type Kardex struct {
	ProductID uint          `json:"producto_id"`
	Code      string        `json:"codigo"`
	Name      string        `json:"nombre"`
	Opening   int           `json:"saldo_inicial"`
	Stock     int           `json:"stock"`
	Entries   []KardexEntry `json:"movimientos"`
}

type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService { return &ReportService{DB: db} }

type movementRow struct {
	Number   string
	Date     time.Time
	Quantity int
	Price    money.Cents
}

// Kardex builds the movements of productID from sale lines (out) and
// purchase lines (in).
func (s *ReportService) Kardex(ctx context.Context, productID uint) (*Kardex, error) {
	tx := s.DB.WithContext(ctx)
	var p models.Product
	if err := tx.First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var outs, ins []movementRow
	err := tx.Table("sale_items").
		Select("sales.number AS number, sales.date AS date, sale_items.quantity AS quantity, sale_items.price AS price").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sale_items.product_id = ?", productID).
		Scan(&outs).Error
	if err != nil {
		return nil, err
	}
	err = tx.Table("purchase_items").
		Select("purchases.number AS number, purchases.date AS date, purchase_items.quantity AS quantity, purchase_items.price AS price").
		Joins("JOIN purchases ON purchases.id = purchase_items.purchase_id").
		Where("purchase_items.product_id = ?", productID).
		Scan(&ins).Error
	if err != nil {
		return nil, err
	}

	entries := make([]KardexEntry, 0, len(outs)+len(ins))
	opening := p.Stock
	for _, m := range ins {
		entries = append(entries, KardexEntry{Date: m.Date, Document: m.Number, Kind: MovementIn, In: m.Quantity, Price: m.Price})
		opening -= m.Quantity
	}
	for _, m := range outs {
		entries = append(entries, KardexEntry{Date: m.Date, Document: m.Number, Kind: MovementOut, Out: m.Quantity, Price: m.Price})
		opening += m.Quantity
	}
	slices.SortStableFunc(entries, func(a, b KardexEntry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Document, b.Document)
	})
	balance := opening
	for i := range entries {
		balance += entries[i].In - entries[i].Out
		entries[i].Balance = balance
	}
	return &Kardex{ProductID: p.ID, Code: p.Code, Name: p.Name, Opening: opening, Stock: p.Stock, Entries: entries}, nil
}
