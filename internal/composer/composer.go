// Package composer maintains a draft sale or purchase: an ordered list of
// lines bound to catalog items, a counterparty, and the totals derived from
// them. One Composer backs one screen; it is not safe for concurrent use.
package composer

import (
	"math"

	"github.com/ale3590/fares/internal/catalog"
	"github.com/ale3590/fares/internal/money"
)

const (
	FieldCounterparty = "counterparty"
	FieldLines        = "lines"
	FieldTotal        = "total"
)

// MaxQuantity is the upper clamp of every line, stock-bound or not.
const MaxQuantity = money.MaxQuantity

// Line is one draft row. Item is nil while the line is unbound (editable).
type Line struct {
	Item     *catalog.Item `json:"item"`
	Search   string        `json:"search,omitempty"`
	Quantity int           `json:"quantity"`
	Discount float64       `json:"discount"`
	Price    money.Cents   `json:"price"`
}

// Bound reports whether a catalog item is attached.
func (l Line) Bound() bool { return l.Item != nil }

// Subtotal is quantity × price × (1 − discount/100); zero for unbound lines
// and for lines whose amount is out of range.
func (l Line) Subtotal() money.Cents {
	sub, _ := l.amount()
	return sub
}

func (l Line) amount() (money.Cents, error) {
	if l.Item == nil {
		return 0, nil
	}
	return money.LineAmount(l.Price, l.Quantity, l.Discount)
}

func newLine() Line { return Line{Quantity: 1} }

// SubmissionLine is one valid line in a finalized payload.
type SubmissionLine struct {
	ItemID   uint
	Quantity int
	Discount float64
	Price    money.Cents
	Subtotal money.Cents
}

// Submission is the payload handed to the recording endpoint.
type Submission struct {
	CounterpartyID uint
	Lines          []SubmissionLine
	Total          money.Cents
}

type Composer struct {
	cfg     Config
	items   []catalog.Item
	parties []catalog.Counterparty

	lines       []Line
	party       *catalog.Counterparty
	partySearch string
}

// New returns an empty draft over the given snapshots.
func New(cfg Config, items []catalog.Item, parties []catalog.Counterparty) *Composer {
	return &Composer{cfg: cfg, items: items, parties: parties}
}

func (c *Composer) Config() Config { return c.cfg }

// SetCatalog replaces the item snapshot. Lines already bound keep their copy.
func (c *Composer) SetCatalog(items []catalog.Item) { c.items = items }

// SetCounterparties replaces the counterparty snapshot.
func (c *Composer) SetCounterparties(list []catalog.Counterparty) { c.parties = list }

func (c *Composer) Catalog() []catalog.Item { return c.items }

func (c *Composer) Counterparties() []catalog.Counterparty { return c.parties }

// Lines returns a copy of the draft lines.
func (c *Composer) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Composer) Counterparty() *catalog.Counterparty {
	if c.party == nil {
		return nil
	}
	cp := *c.party
	return &cp
}

func (c *Composer) CounterpartySearch() string { return c.partySearch }

func (c *Composer) line(i int) (*Line, error) {
	if i < 0 || i >= len(c.lines) {
		return nil, ErrLineNotFound
	}
	return &c.lines[i], nil
}

func (c *Composer) boundLine(i int) (*Line, error) {
	l, err := c.line(i)
	if err != nil {
		return nil, err
	}
	if !l.Bound() {
		return nil, ErrLineUnbound
	}
	return l, nil
}

// AddLine appends an unbound line and returns its index.
func (c *Composer) AddLine() int {
	c.lines = append(c.lines, newLine())
	return len(c.lines) - 1
}

// SearchLine stores the search text of an unbound line and returns suggestions.
func (c *Composer) SearchLine(i int, query string) ([]catalog.Item, error) {
	l, err := c.line(i)
	if err != nil {
		return nil, err
	}
	l.Search = query
	return catalog.Suggest(c.items, query), nil
}

// SelectItem binds the item with the given id to line i.
func (c *Composer) SelectItem(i int, itemID uint) error {
	l, err := c.line(i)
	if err != nil {
		return err
	}
	it, ok := catalog.FindItem(c.items, itemID)
	if !ok {
		return ErrItemNotFound
	}
	return c.bind(l, it)
}

// AcceptLine binds the first match of the line's search text.
func (c *Composer) AcceptLine(i int) error {
	l, err := c.line(i)
	if err != nil {
		return err
	}
	it, err := catalog.Accept(c.items, l.Search)
	if err != nil {
		return err
	}
	return c.bind(l, it)
}

func (c *Composer) bind(l *Line, it catalog.Item) error {
	l.Item = &it
	l.Search = ""
	l.Quantity = 1
	l.Discount = 0
	l.Price = it.PublicPrice
	if c.cfg.QuantityBound == BoundStock && l.Quantity > it.Stock {
		l.Quantity = max(it.Stock, 0)
		return &StockLimitError{Item: it.Label(), Requested: 1, Stock: it.Stock}
	}
	return nil
}

// SetQuantity clamps n to at least 1 and at most MaxQuantity and, for
// stock-bound variants, to at most the item's stock. The applied value is
// returned; a *StockLimitError or ErrQuantityLimit reports an upper clamp.
func (c *Composer) SetQuantity(i, n int) (int, error) {
	l, err := c.boundLine(i)
	if err != nil {
		return 0, err
	}
	q := max(n, 1)
	if c.cfg.QuantityBound == BoundStock && q > l.Item.Stock {
		l.Quantity = min(max(l.Item.Stock, 0), MaxQuantity)
		return l.Quantity, &StockLimitError{Item: l.Item.Label(), Requested: n, Stock: l.Item.Stock}
	}
	if q > MaxQuantity {
		l.Quantity = MaxQuantity
		return l.Quantity, ErrQuantityLimit
	}
	l.Quantity = q
	return q, nil
}

// SetDiscount clamps pct to [0,100].
func (c *Composer) SetDiscount(i int, pct float64) (float64, error) {
	if !c.cfg.AllowDiscount {
		return 0, ErrDiscountNotAllowed
	}
	l, err := c.boundLine(i)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(pct) {
		pct = 0
	}
	l.Discount = min(max(pct, 0), 100)
	return l.Discount, nil
}

// SetPrice sets a manually entered unit price, clamped to be non-negative.
// Prices above money.MaxCents are rejected and leave the line unchanged.
func (c *Composer) SetPrice(i int, price money.Cents) (money.Cents, error) {
	if c.cfg.PriceSource != PriceManual {
		return 0, ErrPriceNotEditable
	}
	l, err := c.boundLine(i)
	if err != nil {
		return 0, err
	}
	if price > money.MaxCents {
		return l.Price, money.ErrOutOfRange
	}
	l.Price = max(price, 0)
	return l.Price, nil
}

// LineChange lists the fields to change on a bound line; nil fields stay.
type LineChange struct {
	Quantity *int
	Discount *float64
	Price    *money.Cents
}

// UpdateLine checks every field of ch before applying any, so a rejected
// change leaves the line as it was. Clamps behave as in SetQuantity,
// SetDiscount and SetPrice and are reported the same way.
func (c *Composer) UpdateLine(i int, ch LineChange) error {
	if _, err := c.boundLine(i); err != nil {
		return err
	}
	if ch.Discount != nil && !c.cfg.AllowDiscount {
		return ErrDiscountNotAllowed
	}
	if ch.Price != nil {
		if c.cfg.PriceSource != PriceManual {
			return ErrPriceNotEditable
		}
		if *ch.Price > money.MaxCents {
			return money.ErrOutOfRange
		}
	}
	if ch.Discount != nil {
		_, _ = c.SetDiscount(i, *ch.Discount)
	}
	if ch.Price != nil {
		_, _ = c.SetPrice(i, *ch.Price)
	}
	if ch.Quantity != nil {
		_, err := c.SetQuantity(i, *ch.Quantity)
		return err
	}
	return nil
}

// EditLine reopens a line: the item is cleared and quantity, discount and
// price return to their defaults.
func (c *Composer) EditLine(i int) error {
	l, err := c.line(i)
	if err != nil {
		return err
	}
	*l = newLine()
	return nil
}

// RemoveLine deletes line i when the variant allows it.
func (c *Composer) RemoveLine(i int) error {
	if !c.cfg.AllowRemoval {
		return ErrRemovalNotAllowed
	}
	if _, err := c.line(i); err != nil {
		return err
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

// SearchCounterparty stores the counterparty search text and returns suggestions.
func (c *Composer) SearchCounterparty(query string) []catalog.Counterparty {
	c.partySearch = query
	return catalog.Suggest(c.parties, query)
}

func (c *Composer) SelectCounterparty(id uint) error {
	cp, ok := catalog.FindCounterparty(c.parties, id)
	if !ok {
		return ErrCounterpartyNotFound
	}
	c.SetCounterparty(cp)
	return nil
}

// AcceptCounterparty binds the first match of the counterparty search text.
func (c *Composer) AcceptCounterparty() error {
	cp, err := catalog.Accept(c.parties, c.partySearch)
	if err != nil {
		return err
	}
	c.SetCounterparty(cp)
	return nil
}

// SetCounterparty binds cp directly, e.g. after a find-or-create lookup.
func (c *Composer) SetCounterparty(cp catalog.Counterparty) {
	c.party = &cp
	c.partySearch = ""
}

// Subtotal of line i.
func (c *Composer) Subtotal(i int) (money.Cents, error) {
	l, err := c.line(i)
	if err != nil {
		return 0, err
	}
	return l.Subtotal(), nil
}

// Total is the exact sum of the line subtotals, or zero when it does not fit;
// Submission reports that case.
func (c *Composer) Total() money.Cents {
	t, _ := c.total()
	return t
}

func (c *Composer) total() (money.Cents, error) {
	subs := make([]money.Cents, len(c.lines))
	for i, l := range c.lines {
		subs[i] = l.Subtotal()
	}
	return money.Sum(subs...)
}

func (c *Composer) valid(l Line) bool {
	if !l.Bound() || l.Quantity <= 0 {
		return false
	}
	if _, err := l.amount(); err != nil {
		return false
	}
	if c.cfg.PriceSource == PriceManual && l.Price <= 0 {
		return false
	}
	return true
}

// ValidateLines checks only the lines, for variants whose counterparty is
// resolved at submission time.
func (c *Composer) ValidateLines() error {
	for _, l := range c.lines {
		if c.valid(l) {
			return nil
		}
	}
	msg := "add at least one item with quantity greater than zero"
	if c.cfg.PriceSource == PriceManual {
		msg = "add at least one item with quantity and price greater than zero"
	}
	return &ValidationError{Field: FieldLines, Message: msg}
}

// Validate checks the counterparty and the lines.
func (c *Composer) Validate() error {
	if c.party == nil {
		return &ValidationError{Field: FieldCounterparty, Message: "select a " + c.cfg.party()}
	}
	return c.ValidateLines()
}

// Submission builds the payload from the valid lines. It fails with the same
// error Validate would return.
func (c *Composer) Submission() (Submission, error) {
	if err := c.Validate(); err != nil {
		return Submission{}, err
	}
	s := Submission{CounterpartyID: c.party.ID}
	var subs []money.Cents
	for _, l := range c.lines {
		if !c.valid(l) {
			continue
		}
		sub := l.Subtotal()
		s.Lines = append(s.Lines, SubmissionLine{
			ItemID:   l.Item.ID,
			Quantity: l.Quantity,
			Discount: l.Discount,
			Price:    l.Price,
			Subtotal: sub,
		})
		subs = append(subs, sub)
	}
	total, err := money.Sum(subs...)
	if err != nil {
		return Submission{}, &ValidationError{Field: FieldTotal, Message: "the order total is out of range"}
	}
	s.Total = total
	return s, nil
}

// Reset discards every line and the counterparty. Snapshots are kept.
func (c *Composer) Reset() {
	c.lines = nil
	c.party = nil
	c.partySearch = ""
}
