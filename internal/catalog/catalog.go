// Package catalog holds the read-only product and counterparty snapshots a
// composer works against, plus the search-and-select resolver over them.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ale3590/fares/internal/money"
)

// MaxSuggestions caps the number of matches offered while typing.
const MaxSuggestions = 5

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("not found")

// Item is a product as published by the catalog service.
type Item struct {
	ID             uint        `json:"id"`
	Code           string      `json:"codigo"`
	Name           string      `json:"nombre"`
	Category       string      `json:"categoria,omitempty"`
	PublicPrice    money.Cents `json:"precio_publico"`
	WholesalePrice money.Cents `json:"precio_mayorista"`
	Stock          int         `json:"stock"`
	MinStock       int         `json:"existencia_minima"`
	Inactive       bool        `json:"inactivo"`
}

// Label is the "code - name" text shown for a bound line.
func (i Item) Label() string { return i.Code + " - " + i.Name }

// LowStock reports whether the item is at or below its minimum stock.
func (i Item) LowStock() bool { return i.Stock <= i.MinStock }

func (i Item) searchText() string { return i.Code + " " + i.Name }

// Counterparty is a client (sales) or a supplier (purchases).
type Counterparty struct {
	ID    uint   `json:"id"`
	Code  string `json:"codigo,omitempty"`
	Name  string `json:"nombre"`
	TaxID string `json:"nit,omitempty"`
}

func (c Counterparty) searchText() string { return c.Code + " " + c.Name }

// Searchable is implemented by Item and Counterparty.
type Searchable interface {
	Item | Counterparty
	searchText() string
}

// NotFoundError reports that a confirmed query matched nothing.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("not found: %s", e.Query) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Match returns every entry whose code or name contains query, ignoring case,
// in list order.
func Match[T Searchable](list []T, query string) []T {
	q := strings.ToLower(query)
	out := make([]T, 0, len(list))
	for _, v := range list {
		if strings.Contains(strings.ToLower(v.searchText()), q) {
			out = append(out, v)
		}
	}
	return out
}

// Suggest returns at most MaxSuggestions matches. A blank query suggests nothing.
func Suggest[T Searchable](list []T, query string) []T {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	m := Match(list, query)
	if len(m) > MaxSuggestions {
		m = m[:MaxSuggestions]
	}
	return m
}

// Accept resolves an explicit confirmation: the first match wins.
func Accept[T Searchable](list []T, query string) (T, error) {
	var zero T
	if strings.TrimSpace(query) == "" {
		return zero, &NotFoundError{Query: query}
	}
	m := Match(list, query)
	if len(m) == 0 {
		return zero, &NotFoundError{Query: query}
	}
	return m[0], nil
}

// Active drops inactive items.
func Active(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.Inactive {
			out = append(out, it)
		}
	}
	return out
}

// FindItem looks an item up by id.
func FindItem(items []Item, id uint) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// FindCounterparty looks a counterparty up by id.
func FindCounterparty(list []Counterparty, id uint) (Counterparty, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return Counterparty{}, false
}
