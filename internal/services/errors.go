package services

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder        = errors.New("empty_order")
	ErrTotalMismatch     = errors.New("total_mismatch")
	ErrClientNotFound    = errors.New("client_not_found")
	ErrSupplierNotFound  = errors.New("supplier_not_found")
	ErrProductNotFound   = errors.New("product_not_found")
	ErrProductInactive   = errors.New("product_inactive")
	ErrInvalidLine       = errors.New("invalid_line")
	ErrInsufficientStock = errors.New("insufficient_stock")
)

// StockError reports a sale line asking for more units than are in stock.
type StockError struct {
	ProductID uint
	Code      string
	Name      string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Stock insuficiente para %s - %s: solicitado %d, disponible %d", e.Code, e.Name, e.Requested, e.Available)
}

func (e *StockError) Is(target error) bool { return target == ErrInsufficientStock }

// LineError ties a failure to the request line it came from.
type LineError struct {
	Index int
	Err   error
}

func (e *LineError) Error() string { return fmt.Sprintf("items[%d]: %v", e.Index, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }
