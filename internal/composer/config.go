package composer

// QuantityBound selects the upper clamp applied to line quantities.
type QuantityBound int

const (
	// BoundStock caps quantities at the bound item's stock.
	BoundStock QuantityBound = iota
	// BoundNone leaves quantities without upper bound.
	BoundNone
)

// PriceSource selects where a line's unit price comes from.
type PriceSource int

const (
	// PriceCatalog takes the item's public price and does not allow edits.
	PriceCatalog PriceSource = iota
	// PriceManual seeds the price from the catalog and lets the user enter it.
	PriceManual
)

// Config parameterizes one composer variant.
type Config struct {
	// Party names the counterparty in messages ("client", "supplier").
	Party         string
	AllowRemoval  bool
	QuantityBound QuantityBound
	PriceSource   PriceSource
	AllowDiscount bool
}

var (
	// Invoicing is the sales invoice screen.
	Invoicing = Config{Party: "client", QuantityBound: BoundStock, PriceSource: PriceCatalog, AllowDiscount: true}
	// PointOfSale behaves like invoicing; its counterparty comes from find-or-create.
	PointOfSale = Config{Party: "client", QuantityBound: BoundStock, PriceSource: PriceCatalog, AllowDiscount: true}
	// Receiving is the merchandise intake screen.
	Receiving = Config{Party: "supplier", AllowRemoval: true, QuantityBound: BoundNone, PriceSource: PriceManual}
)

func (c Config) party() string {
	if c.Party == "" {
		return "counterparty"
	}
	return c.Party
}
