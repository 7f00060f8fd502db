package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ale3590/fares/internal/money"
)

// LineInput is one requested line of a sale or purchase.
type LineInput struct {
	ProductID uint
	Quantity  int
	Discount  float64
	Price     money.Cents
}

func checkLines(lines []LineInput) error {
	if len(lines) == 0 {
		return ErrEmptyOrder
	}
	for i, l := range lines {
		if l.ProductID == 0 || l.Quantity <= 0 || l.Quantity > money.MaxQuantity || l.Discount < 0 || l.Discount > 100 {
			return &LineError{Index: i, Err: ErrInvalidLine}
		}
	}
	return nil
}

func keyPtr(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}

// idempotent runs create unless a record stored under key already exists,
// in which case find loads it and replayed is true. A create that loses the
// race on the unique key also ends in find.
func idempotent(ctx context.Context, db *gorm.DB, key string, find func(tx *gorm.DB) error, create func(tx *gorm.DB) error) (replayed bool, err error) {
	if key != "" {
		err := find(db.WithContext(ctx))
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
	}
	err = db.WithContext(ctx).Transaction(create)
	if err != nil && key != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
		if ferr := find(db.WithContext(ctx)); ferr == nil {
			return true, nil
		}
	}
	return false, err
}
