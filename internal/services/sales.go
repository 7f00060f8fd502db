package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ale3590/fares/internal/models"
	"github.com/ale3590/fares/internal/money"
)

// SaleInput is a sale as submitted by a client screen.
type SaleInput struct {
	ClientID       uint
	UserID         uint
	Items          []LineInput
	Total          money.Cents
	IdempotencyKey string
}

// SalesService records sales. Prices come from the catalog; the submitted
// total must match the one computed here to the cent.
type SalesService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewSalesService(db *gorm.DB) *SalesService { return &SalesService{DB: db, Now: time.Now} }

// RecordSale stores the sale, decrements stock and numbers it V-000001.
// A repeated idempotency key returns the stored sale with replayed set.
func (s *SalesService) RecordSale(ctx context.Context, in SaleInput) (sale *models.Sale, replayed bool, err error) {
	if err := checkLines(in.Items); err != nil {
		return nil, false, err
	}
	sale = &models.Sale{}
	find := func(tx *gorm.DB) error {
		*sale = models.Sale{}
		return tx.Preload("Items").Preload("Client").Where("idempotency_key = ?", in.IdempotencyKey).First(sale).Error
	}
	create := func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, in.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return err
		}

		items := make([]models.SaleItem, len(in.Items))
		subs := make([]money.Cents, len(in.Items))
		for i, l := range in.Items {
			var p models.Product
			if err := tx.First(&p, l.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &LineError{Index: i, Err: ErrProductNotFound}
				}
				return err
			}
			if p.Inactive {
				return &LineError{Index: i, Err: ErrProductInactive}
			}
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", p.ID, l.Quantity).
				Update("stock", gorm.Expr("stock - ?", l.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &StockError{ProductID: p.ID, Code: p.Code, Name: p.Name, Requested: l.Quantity, Available: p.Stock}
			}
			sub, err := money.LineAmount(p.PublicPrice, l.Quantity, l.Discount)
			if err != nil {
				return &LineError{Index: i, Err: ErrInvalidLine}
			}
			items[i] = models.SaleItem{ProductID: p.ID, Quantity: l.Quantity, Price: p.PublicPrice, Discount: l.Discount, Subtotal: sub}
			subs[i] = sub
		}
		total, err := money.Sum(subs...)
		if err != nil {
			return ErrInvalidLine
		}
		if total != in.Total {
			return fmt.Errorf("%w: expected %s, got %s", ErrTotalMismatch, total, in.Total)
		}

		*sale = models.Sale{
			Number:         "tmp-" + uuid.NewString(),
			ClientID:       client.ID,
			Client:         &client,
			UserID:         in.UserID,
			Total:          total,
			Status:         models.StatusCompleted,
			IdempotencyKey: keyPtr(in.IdempotencyKey),
			Date:           s.Now().UTC(),
			Items:          items,
		}
		if err := tx.Omit("Client").Create(sale).Error; err != nil {
			return err
		}
		sale.Number = models.SaleNumber(sale.ID)
		if err := tx.Model(sale).Update("number", sale.Number).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLog{UserID: in.UserID, EntityType: "Sale", EntityID: sale.ID, Action: "create", Detail: sale.Number}).Error
	}
	replayed, err = idempotent(ctx, s.DB, in.IdempotencyKey, find, create)
	if err != nil {
		return nil, false, err
	}
	return sale, replayed, nil
}
