// Package history filters and pages the read-only list of confirmed records
// shown beside each composer screen.
package history

import (
	"errors"
	"strings"
	"time"

	"github.com/ale3590/fares/internal/money"
)

// ErrPageOutOfRange is returned for pages outside [1, TotalPages].
var ErrPageOutOfRange = errors.New("history: page out of range")

// DateLayout is the exact-date filter format.
const DateLayout = "2006-01-02"

// Record is the summary of a confirmed sale or purchase.
type Record struct {
	ID           uint        `json:"id"`
	Number       string      `json:"numero"`
	Counterparty string      `json:"contraparte"`
	Total        money.Cents `json:"total"`
	Date         time.Time   `json:"fecha"`
	Status       string      `json:"estado,omitempty"`
}

// Line is one line of a confirmed record.
type Line struct {
	Code     string      `json:"codigo"`
	Name     string      `json:"nombre"`
	Quantity int         `json:"cantidad"`
	Price    money.Cents `json:"precio"`
	Discount float64     `json:"descuento"`
	Subtotal money.Cents `json:"subtotal"`
}

// Detail is a record with its lines.
type Detail struct {
	Record
	Lines []Line `json:"lineas"`
}

// Filter narrows a record list. Zero-valued fields do not filter.
type Filter struct {
	Counterparty string `json:"q,omitempty"`
	Date         string `json:"date,omitempty"`
	// Location converts record timestamps before comparing dates; nil means UTC.
	Location *time.Location `json:"-"`
}

func (f Filter) match(r Record) bool {
	if f.Counterparty != "" && !strings.Contains(strings.ToLower(r.Counterparty), strings.ToLower(f.Counterparty)) {
		return false
	}
	if f.Date != "" {
		loc := f.Location
		if loc == nil {
			loc = time.UTC
		}
		if r.Date.In(loc).Format(DateLayout) != f.Date {
			return false
		}
	}
	return true
}

// Apply returns the records that pass both filters, in order.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Page is one slice of a filtered list.
type Page struct {
	Records    []Record `json:"records"`
	Number     int      `json:"page"`
	Size       int      `json:"size"`
	TotalPages int      `json:"total_pages"`
	TotalCount int      `json:"total_count"`
}

// TotalPages is ceil(n/size), and never less than 1.
func TotalPages(n, size int) int {
	if size <= 0 || n == 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Paginate returns page (1-based) of records.
func Paginate(records []Record, page, size int) (Page, error) {
	if size <= 0 {
		size = len(records)
		if size == 0 {
			size = 1
		}
	}
	total := TotalPages(len(records), size)
	if page < 1 || page > total {
		return Page{}, ErrPageOutOfRange
	}
	start := (page - 1) * size
	end := min(start+size, len(records))
	out := make([]Record, end-start)
	copy(out, records[start:end])
	return Page{Records: out, Number: page, Size: size, TotalPages: total, TotalCount: len(records)}, nil
}

// List holds the records of one screen with its current filter and page.
type List struct {
	size    int
	records []Record
	filter  Filter
	page    int
}

func NewList(size int) *List { return &List{size: size, page: 1} }

// Replace swaps in a freshly fetched list and returns to page 1.
func (l *List) Replace(records []Record) {
	l.records = records
	l.page = 1
}

// SetFilter changes the filter and returns to page 1.
func (l *List) SetFilter(f Filter) {
	l.filter = f
	l.page = 1
}

func (l *List) Filter() Filter { return l.filter }

// SetPage moves to page p of the filtered list; the current page is kept on error.
func (l *List) SetPage(p int) error {
	if p < 1 || p > TotalPages(len(l.filter.Apply(l.records)), l.size) {
		return ErrPageOutOfRange
	}
	l.page = p
	return nil
}

// Current returns the current page of the filtered list.
func (l *List) Current() Page {
	p, err := Paginate(l.filter.Apply(l.records), l.page, l.size)
	if err != nil {
		// The list shrank under the current page.
		l.page = 1
		p, _ = Paginate(l.filter.Apply(l.records), 1, l.size)
	}
	return p
}

// Filtered returns every record passing the current filter.
func (l *List) Filtered() []Record { return l.filter.Apply(l.records) }

func (l *List) Len() int { return len(l.records) }
