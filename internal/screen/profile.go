package screen

import (
	"fmt"

	"github.com/ale3590/fares/internal/composer"
)

// Kind names one of the composer screens.
type Kind string

const (
	KindInvoicing Kind = "invoicing"
	KindPOS       Kind = "pos"
	KindReceiving Kind = "receiving"
)

// Kinds lists every screen kind.
var Kinds = []Kind{KindInvoicing, KindPOS, KindReceiving}

// ParseKind validates a kind taken from a URL or flag.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown screen %q", s)
}

// Sales reports whether the screen records sales (as opposed to purchases).
func (k Kind) Sales() bool { return k != KindReceiving }

// Profile configures one screen kind.
type Profile struct {
	Kind     Kind
	Title    string
	Composer composer.Config
	PageSize int
	Currency string
	// WalkInTaxID is used by the point of sale when no tax id is entered.
	WalkInTaxID string
	WalkInName  string
}

// DefaultProfiles returns the built-in configuration of every screen.
func DefaultProfiles() map[Kind]Profile {
	return map[Kind]Profile{
		KindInvoicing: {Kind: KindInvoicing, Title: "Facturación", Composer: composer.Invoicing, PageSize: 15, Currency: "Q"},
		KindPOS: {Kind: KindPOS, Title: "Punto de venta", Composer: composer.PointOfSale, PageSize: 5, Currency: "Q",
			WalkInTaxID: "C/F", WalkInName: "Consumidor Final"},
		KindReceiving: {Kind: KindReceiving, Title: "Ingreso de mercadería", Composer: composer.Receiving, PageSize: 10, Currency: "Q"},
	}
}
