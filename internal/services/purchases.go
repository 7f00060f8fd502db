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

// PurchaseInput is a merchandise receipt. Prices are entered by hand.
type PurchaseInput struct {
	SupplierID     uint
	UserID         uint
	Items          []LineInput
	Total          money.Cents
	IdempotencyKey string
}

type PurchaseService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewPurchaseService(db *gorm.DB) *PurchaseService {
	return &PurchaseService{DB: db, Now: time.Now}
}

// RecordPurchase stores the receipt, raises stock and numbers it C-000001.
func (s *PurchaseService) RecordPurchase(ctx context.Context, in PurchaseInput) (pur *models.Purchase, replayed bool, err error) {
	if err := checkLines(in.Items); err != nil {
		return nil, false, err
	}
	for i, l := range in.Items {
		// Receipts carry no discount.
		if l.Price <= 0 || !l.Price.InRange() || l.Discount != 0 {
			return nil, false, &LineError{Index: i, Err: ErrInvalidLine}
		}
	}
	pur = &models.Purchase{}
	find := func(tx *gorm.DB) error {
		*pur = models.Purchase{}
		return tx.Preload("Items").Preload("Supplier").Where("idempotency_key = ?", in.IdempotencyKey).First(pur).Error
	}
	create := func(tx *gorm.DB) error {
		var sup models.Supplier
		if err := tx.First(&sup, in.SupplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSupplierNotFound
			}
			return err
		}
		items := make([]models.PurchaseItem, len(in.Items))
		subs := make([]money.Cents, len(in.Items))
		for i, l := range in.Items {
			res := tx.Model(&models.Product{}).Where("id = ?", l.ProductID).
				Update("stock", gorm.Expr("stock + ?", l.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &LineError{Index: i, Err: ErrProductNotFound}
			}
			sub, err := money.LineAmount(l.Price, l.Quantity, 0)
			if err != nil {
				return &LineError{Index: i, Err: ErrInvalidLine}
			}
			items[i] = models.PurchaseItem{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price, Subtotal: sub}
			subs[i] = sub
		}
		total, err := money.Sum(subs...)
		if err != nil {
			return ErrInvalidLine
		}
		if total != in.Total {
			return fmt.Errorf("%w: expected %s, got %s", ErrTotalMismatch, total, in.Total)
		}
		*pur = models.Purchase{
			Number:         "tmp-" + uuid.NewString(),
			SupplierID:     sup.ID,
			Supplier:       &sup,
			UserID:         in.UserID,
			Total:          total,
			Status:         models.StatusCompleted,
			IdempotencyKey: keyPtr(in.IdempotencyKey),
			Date:           s.Now().UTC(),
			Items:          items,
		}
		if err := tx.Omit("Supplier").Create(pur).Error; err != nil {
			return err
		}
		pur.Number = models.PurchaseNumber(pur.ID)
		if err := tx.Model(pur).Update("number", pur.Number).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLog{UserID: in.UserID, EntityType: "Purchase", EntityID: pur.ID, Action: "create", Detail: pur.Number}).Error
	}
	replayed, err = idempotent(ctx, s.DB, in.IdempotencyKey, find, create)
	if err != nil {
		return nil, false, err
	}
	return pur, replayed, nil
}
