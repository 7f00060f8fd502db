package composer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ale3590/fares/internal/catalog"
	"github.com/ale3590/fares/internal/money"
)

var (
	items = []catalog.Item{
		{ID: 1, Code: "A1", Name: "Widget", PublicPrice: 10000, Stock: 10},
		{ID: 2, Code: "B2", Name: "Gadget", PublicPrice: 2550, Stock: 4},
		{ID: 3, Code: "C3", Name: "Sprocket", PublicPrice: 999, Stock: 0},
	}
	clients = []catalog.Counterparty{
		{ID: 7, Code: "CL-7", Name: "Ferretería Luna"},
		{ID: 8, Code: "CL-8", Name: "Abarrotes Sol"},
	}
)

func newInvoice(t *testing.T) *Composer {
	t.Helper()
	return New(Invoicing, items, clients)
}

func TestSubtotalAndTotal(t *testing.T) {
	c := newInvoice(t)
	a := c.AddLine()
	require.NoError(t, c.SelectItem(a, 1))
	_, err := c.SetQuantity(a, 3)
	require.NoError(t, err)
	_, err = c.SetDiscount(a, 10)
	require.NoError(t, err)

	b := c.AddLine()
	require.NoError(t, c.SelectItem(b, 2))
	_, err = c.SetQuantity(b, 2)
	require.NoError(t, err)

	c.AddLine() // unbound, contributes nothing

	sa, _ := c.Subtotal(a)
	sb, _ := c.Subtotal(b)
	assert.Equal(t, money.Cents(27000), sa)
	assert.Equal(t, money.Cents(5100), sb)
	assert.Equal(t, sa+sb, c.Total())
	assert.Equal(t, "321.00", c.Total().String())
}

func TestQuantityClampToStock(t *testing.T) {
	c := newInvoice(t)
	i := c.AddLine()
	require.NoError(t, c.SelectItem(i, 2))

	got, err := c.SetQuantity(i, 9)
	var sl *StockLimitError
	require.ErrorAs(t, err, &sl)
	assert.Equal(t, 4, got)
	assert.Equal(t, 4, sl.Stock)
	assert.Equal(t, 9, sl.Requested)
	assert.Equal(t, 4, c.Lines()[i].Quantity, "clamped value is applied")

	got, err = c.SetQuantity(i, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestReceivingHasNoUpperBound(t *testing.T) {
	c := New(Receiving, items, nil)
	i := c.AddLine()
	require.NoError(t, c.SelectItem(i, 2))
	got, err := c.SetQuantity(i, 500)
	require.NoError(t, err)
	assert.Equal(t, 500, got)

	got, err = c.SetQuantity(i, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestQuantityAndPriceLimits(t *testing.T) {
	c := New(Receiving, []catalog.Item{{ID: 1, Code: "A1", Name: "Widget", PublicPrice: 100}}, clients)
	i := c.AddLine()
	require.NoError(t, c.SelectItem(i, 1))

	got, err := c.SetQuantity(i, 184467440737095517)
	assert.ErrorIs(t, err, ErrQuantityLimit)
	assert.Equal(t, MaxQuantity, got)
	assert.Equal(t, MaxQuantity, c.Lines()[i].Quantity, "clamped value is applied")

	_, err = c.SetPrice(i, money.MaxCents+1)
	assert.ErrorIs(t, err, money.ErrOutOfRange)
	assert.Equal(t, money.Cents(100), c.Lines()[i].Price, "rejected price leaves the line")

	c.SetCounterparty(clients[0])
	sub, err := c.Submission()
	require.NoError(t, err)
	assert.Equal(t, money.Cents(100_000_000), sub.Total)
	assert.Equal(t, money.Cents(100)*MaxQuantity, sub.Lines[0].Subtotal)
}

func TestCatalogPriceOutOfRangeInvalidatesLine(t *testing.T) {
	c := New(Invoicing, []catalog.Item{{ID: 1, Code: "A1", Name: "Widget", PublicPrice: money.MaxCents + 1, Stock: 5}}, clients)
	i := c.AddLine()
	require.NoError(t, c.SelectItem(i, 1))
	c.SetCounterparty(clients[0])

	assert.Zero(t, c.Total())
	var ve *ValidationError
	require.ErrorAs(t, c.Validate(), &ve)
	assert.Equal(t, FieldLines, ve.Field)
}

func TestOutOfStockItemBindsWithZeroQuantity(t *testing.T) {
	c := newInvoice(t)
	i := c.AddLine()
	err := c.SelectItem(i, 3)
	var sl *StockLimitError
	require.ErrorAs(t, err, &sl)
	assert.True(t, c.Lines()[i].Bound())
	assert.Equal(t, 0, c.Lines()[i].Quantity)

	c.SetCounterparty(clients[0])
	var ve *ValidationError
	require.ErrorAs(t, c.Validate(), &ve)
	assert.Equal(t, FieldLines, ve.Field)
}

func TestDiscountClamp(t *testing.T) {
	c := newInvoice(t)
	i := c.AddLine()
	require.NoError(t, c.SelectItem(i, 1))

	for in, want := range map[float64]float64{-5: 0, 0: 0, 12.5: 12.5, 100: 100, 250: 100} {
		got, err := c.SetDiscount(i, in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %v", in)
	}

	r := New(Receiving, items, nil)
	j := r.AddLine()
	require.NoError(t, r.SelectItem(j, 1))
	_, err := r.SetDiscount(j, 10)
	assert.ErrorIs(t, err, ErrDiscountNotAllowed)
}

func TestUnboundLineRejectsEdits(t *testing.T) {
	c := newInvoice(t)
	i := c.AddLine()
	_, err := c.SetQuantity(i, 2)
	assert.ErrorIs(t, err, ErrLineUnbound)
	_, err = c.SetDiscount(i, 2)
	assert.ErrorIs(t, err, ErrLineUnbound)
	_, err = c.SetQuantity(5, 2)
	assert.ErrorIs(t, err, ErrLineNotFound)
	assert.ErrorIs(t, c.SelectItem(i, 99), ErrItemNotFound)
}

func TestManualPrice(t *testing.T) {
	c := New(Receiving, items, nil)
	i := c.AddLine()
	require.NoError(t, c.SelectItem(i, 1))
	assert.Equal(t, money.Cents(10000), c.Lines()[i].Price, "seeded from the catalog")

	got, err := c.SetPrice(i, -100)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(0), got)

	_, err = c.SetPrice(i, 4550)
	require.NoError(t, err)
	_, err = c.SetQuantity(i, 2)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(9100), c.Total())

	s := newInvoice(t)
	j := s.AddLine()
	require.NoError(t, s.SelectItem(j, 1))
	_, err = s.SetPrice(j, 1)
	assert.ErrorIs(t, err, ErrPriceNotEditable)
}

func TestUpdateLineIsAllOrNothing(t *testing.T) {
	r := New(Receiving, items, nil)
	i := r.AddLine()
	require.NoError(t, r.SelectItem(i, 1))
	qty, pct := 5, 10.0
	err := r.UpdateLine(i, LineChange{Quantity: &qty, Discount: &pct})
	assert.ErrorIs(t, err, ErrDiscountNotAllowed)
	assert.Equal(t, 1, r.Lines()[i].Quantity, "quantity untouched when the discount is rejected")

	price := money.Cents(4550)
	require.NoError(t, r.UpdateLine(i, LineChange{Quantity: &qty, Price: &price}))
	assert.Equal(t, money.Cents(22750), r.Total())

	c := newInvoice(t)
	j := c.AddLine()
	require.NoError(t, c.SelectItem(j, 2))
	qty = 9
	err = c.UpdateLine(j, LineChange{Quantity: &qty, Discount: &pct})
	assert.True(t, Clamped(err))
	assert.Equal(t, 4, c.Lines()[j].Quantity)
	assert.Equal(t, 10.0, c.Lines()[j].Discount, "clamps still apply the rest")

	err = c.UpdateLine(j, LineChange{Price: &price})
	assert.ErrorIs(t, err, ErrPriceNotEditable)
	assert.False(t, Clamped(err))
}

func TestEditLineResets(t *testing.T) {
	c := newInvoice(t)
	i := c.AddLine()
	require.NoError(t, c.SelectItem(i, 1))
	_, _ = c.SetQuantity(i, 3)
	_, _ = c.SetDiscount(i, 10)

	require.NoError(t, c.EditLine(i))
	l := c.Lines()[i]
	assert.False(t, l.Bound())
	assert.Nil(t, l.Item)
	assert.Equal(t, 1, l.Quantity)
	assert.Zero(t, l.Discount)
	assert.Zero(t, l.Price)
	assert.Zero(t, c.Total())
}

func TestRemoveLineFollowsConfig(t *testing.T) {
	c := newInvoice(t)
	c.AddLine()
	assert.ErrorIs(t, c.RemoveLine(0), ErrRemovalNotAllowed)
	assert.Len(t, c.Lines(), 1)

	r := New(Receiving, items, nil)
	r.AddLine()
	r.AddLine()
	require.NoError(t, r.SelectItem(1, 2))
	require.NoError(t, r.RemoveLine(0))
	require.Len(t, r.Lines(), 1)
	assert.Equal(t, uint(2), r.Lines()[0].Item.ID)
	assert.ErrorIs(t, r.RemoveLine(3), ErrLineNotFound)
}

func TestSearchAndAccept(t *testing.T) {
	c := newInvoice(t)
	i := c.AddLine()
	sugg, err := c.SearchLine(i, "wid")
	require.NoError(t, err)
	require.Len(t, sugg, 1)
	assert.Equal(t, "A1", sugg[0].Code)

	_, err = c.SearchLine(i, "z")
	require.NoError(t, err)
	err = c.AcceptLine(i)
	assert.EqualError(t, err, "not found: z")
	assert.True(t, errors.Is(err, catalog.ErrNotFound))
	assert.False(t, c.Lines()[i].Bound())

	_, _ = c.SearchLine(i, "GAD")
	require.NoError(t, c.AcceptLine(i))
	l := c.Lines()[i]
	assert.Equal(t, uint(2), l.Item.ID)
	assert.Empty(t, l.Search, "search text cleared on bind")
}

func TestCounterpartyResolution(t *testing.T) {
	c := newInvoice(t)
	assert.Len(t, c.SearchCounterparty("luna"), 1)
	require.NoError(t, c.AcceptCounterparty())
	assert.Equal(t, uint(7), c.Counterparty().ID)
	assert.Empty(t, c.CounterpartySearch())

	c.SearchCounterparty("nadie")
	assert.ErrorIs(t, c.AcceptCounterparty(), catalog.ErrNotFound)
	assert.Equal(t, uint(7), c.Counterparty().ID, "failed accept keeps the previous binding")

	assert.ErrorIs(t, c.SelectCounterparty(99), ErrCounterpartyNotFound)
	require.NoError(t, c.SelectCounterparty(8))
	assert.Equal(t, "Abarrotes Sol", c.Counterparty().Name)
}

func TestValidate(t *testing.T) {
	c := newInvoice(t)
	var ve *ValidationError

	require.ErrorAs(t, c.Validate(), &ve)
	assert.Equal(t, FieldCounterparty, ve.Field)

	c.SetCounterparty(clients[0])
	c.AddLine()
	require.ErrorAs(t, c.Validate(), &ve)
	assert.Equal(t, FieldLines, ve.Field)

	_, err := c.Submission()
	assert.ErrorAs(t, err, &ve)

	require.NoError(t, c.SelectItem(0, 1))
	assert.NoError(t, c.Validate())

	r := New(Receiving, items, nil)
	r.SetCounterparty(catalog.Counterparty{ID: 1, Name: "Proveedor"})
	r.AddLine()
	require.NoError(t, r.SelectItem(0, 1))
	_, _ = r.SetPrice(0, 0)
	require.ErrorAs(t, r.Validate(), &ve, "purchases need a positive price")
	assert.Equal(t, FieldLines, ve.Field)
}

func TestSubmissionSkipsInvalidLines(t *testing.T) {
	c := newInvoice(t)
	c.SetCounterparty(clients[1])
	c.AddLine()
	i := c.AddLine()
	require.NoError(t, c.SelectItem(i, 1))
	_, _ = c.SetQuantity(i, 3)
	_, _ = c.SetDiscount(i, 10)

	s, err := c.Submission()
	require.NoError(t, err)
	assert.Equal(t, uint(8), s.CounterpartyID)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, SubmissionLine{ItemID: 1, Quantity: 3, Discount: 10, Price: 10000, Subtotal: 27000}, s.Lines[0])
	assert.Equal(t, money.Cents(27000), s.Total)
	assert.Equal(t, c.Total(), s.Total)
}

func TestReset(t *testing.T) {
	c := newInvoice(t)
	c.SetCounterparty(clients[0])
	c.AddLine()
	c.Reset()
	assert.Empty(t, c.Lines())
	assert.Nil(t, c.Counterparty())
	assert.Len(t, c.Catalog(), len(items))
}
