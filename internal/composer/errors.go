package composer

import (
	"errors"
	"fmt"
)

var (
	ErrLineNotFound         = errors.New("composer: line not found")
	ErrLineUnbound          = errors.New("composer: line has no item")
	ErrItemNotFound         = errors.New("composer: item not found")
	ErrRemovalNotAllowed    = errors.New("composer: lines cannot be removed")
	ErrDiscountNotAllowed   = errors.New("composer: discounts are disabled")
	ErrPriceNotEditable     = errors.New("composer: price comes from the catalog")
	ErrCounterpartyNotFound = errors.New("composer: counterparty not found")

	// ErrQuantityLimit follows a quantity clamped to MaxQuantity. The clamped
	// value is already applied.
	ErrQuantityLimit = errors.New("composer: quantity above the line limit")
)

// StockLimitError is returned after a quantity was clamped to the available
// stock. The clamped value is already applied.
type StockLimitError struct {
	Item      string
	Requested int
	Stock     int
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("only %d units of %s in stock (requested %d)", e.Stock, e.Item, e.Requested)
}

// ValidationError is a field-level rejection raised before submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// Clamped reports whether err only says a value was clamped; the operation
// was applied.
func Clamped(err error) bool {
	var sl *StockLimitError
	return errors.As(err, &sl) || errors.Is(err, ErrQuantityLimit)
}
