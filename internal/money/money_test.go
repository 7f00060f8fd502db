package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name     string
		price    Cents
		qty      int
		discount float64
		want     Cents
	}{
		{"three at 100 with 10%", 10000, 3, 10, 27000},
		{"no discount", 1550, 2, 0, 3100},
		{"full discount", 10000, 4, 100, 0},
		{"zero quantity", 10000, 0, 0, 0},
		{"rounds half up", 333, 1, 50, 167},
		{"fractional discount", 1999, 3, 12.5, 5247},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LineAmount(tt.price, tt.qty, tt.discount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineAmountRejectsOverflow(t *testing.T) {
	_, err := LineAmount(100, 184467440737095517, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = LineAmount(MaxCents+1, 1, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	got, err := LineAmount(MaxCents, MaxQuantity, 0)
	require.NoError(t, err)
	assert.Equal(t, Cents(10_000_000_000_000_000), got)
}

func TestSumHasNoDrift(t *testing.T) {
	// 0.1 added a thousand times drifts with float64; in cents it is exact.
	amounts := make([]Cents, 1000)
	for i := range amounts {
		c, err := FromFloat(0.1)
		require.NoError(t, err)
		amounts[i] = c
	}
	total, err := Sum(amounts...)
	require.NoError(t, err)
	assert.Equal(t, Cents(10000), total)
	assert.Equal(t, "100.00", total.String())
}

func TestSumRejectsOverflow(t *testing.T) {
	_, err := Sum(math.MaxInt64-1, 2)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = Sum(math.MinInt64+1, -2)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = FromFloat(math.Inf(1))
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = FromFloat(1e30)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestParseAndFormat(t *testing.T) {
	c, err := Parse("99.955")
	require.NoError(t, err)
	assert.Equal(t, Cents(9996), c)
	assert.Equal(t, "Q 99.96", c.Format("Q"))

	_, err = Parse("abc")
	assert.Error(t, err)

	_, err = Parse("1e30")
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = Parse("-92233720368547758.09")
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestJSON(t *testing.T) {
	var v struct {
		A Cents `json:"a"`
		B Cents `json:"b"`
		C Cents `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"100.00","b":12.5,"c":null}`), &v))
	assert.Equal(t, Cents(10000), v.A)
	assert.Equal(t, Cents(1250), v.B)
	assert.Equal(t, Cents(0), v.C)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":100.00,"b":12.50,"c":0.00}`, string(out))

	var c Cents
	assert.ErrorIs(t, json.Unmarshal([]byte(`1e30`), &c), ErrOutOfRange)
	assert.Zero(t, c)
}
