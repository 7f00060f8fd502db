// Package money keeps monetary amounts as integer cents and converts to decimal
// only when amounts cross a boundary (JSON, display, storage of user input).
package money

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Cents is an amount in minor units (1/100 of the currency unit).
type Cents int64

// Line bounds. A line whose unit price and quantity stay within them never
// overflows: MaxCents × MaxQuantity is 1e16, far below the int64 limit.
const (
	MaxCents    Cents = 10_000_000_000 // 100,000,000.00 per unit
	MaxQuantity       = 1_000_000
)

// ErrOutOfRange is returned for amounts that do not fit the bounds above or
// an int64 number of cents.
var ErrOutOfRange = errors.New("money: amount out of range")

var (
	hundred  = decimal.NewFromInt(100)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// FromFloat converts a float amount (e.g. 12.5) to cents, rounding half away from zero.
func FromFloat(f float64) (Cents, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrOutOfRange
	}
	return fromDecimal(decimal.NewFromFloat(f))
}

// Parse reads a decimal string such as "100", "99.95" or "1e2".
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", s, err)
	}
	c, err := fromDecimal(d)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return c, nil
}

func fromDecimal(d decimal.Decimal) (Cents, error) {
	c := d.Mul(hundred).Round(0)
	if c.GreaterThan(maxInt64) || c.LessThan(minInt64) {
		return 0, ErrOutOfRange
	}
	return Cents(c.IntPart()), nil
}

// InRange reports whether c is a valid unit price: within ±MaxCents.
func (c Cents) InRange() bool { return c >= -MaxCents && c <= MaxCents }

// Decimal returns the amount in currency units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// Float64 is for presentation layers that insist on floats (spreadsheets).
func (c Cents) Float64() float64 {
	f, _ := c.Decimal().Float64()
	return f
}

// String renders the amount with exactly two decimals.
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Format prefixes the amount with a currency symbol, e.g. "Q 270.00".
func (c Cents) Format(symbol string) string {
	if symbol == "" {
		return c.String()
	}
	return symbol + " " + c.String()
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts numbers and numeric strings ("100.00"), null is zero.
func (c *Cents) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = 0
		return nil
	}
	b = bytes.Trim(b, `"`)
	if len(b) == 0 {
		*c = 0
		return nil
	}
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// LineAmount is qty × price × (1 − discountPct/100), rounded to the cent.
// discountPct is expected in [0,100]; callers clamp before calling. A price
// outside ±MaxCents or a quantity above MaxQuantity yields ErrOutOfRange.
func LineAmount(price Cents, qty int, discountPct float64) (Cents, error) {
	if !price.InRange() || qty > MaxQuantity {
		return 0, ErrOutOfRange
	}
	if qty <= 0 || price == 0 {
		return 0, nil
	}
	factor := decimal.NewFromInt(1)
	if discountPct != 0 {
		factor = factor.Sub(decimal.NewFromFloat(discountPct).Div(hundred))
	}
	amount := price.Decimal().Mul(decimal.NewFromInt(int64(qty))).Mul(factor)
	return fromDecimal(amount)
}

// Sum adds amounts exactly, failing with ErrOutOfRange instead of wrapping.
func Sum(amounts ...Cents) (Cents, error) {
	var total Cents
	for _, a := range amounts {
		if (a > 0 && total > math.MaxInt64-a) || (a < 0 && total < math.MinInt64-a) {
			return 0, ErrOutOfRange
		}
		total += a
	}
	return total, nil
}
