// Package screen adapts the composer to one panel screen: it loads the
// snapshots a screen works against, runs submissions through the backend
// and renders a localized view model.
package screen

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ale3590/fares/internal/catalog"
	"github.com/ale3590/fares/internal/composer"
	"github.com/ale3590/fares/internal/history"
	"github.com/ale3590/fares/internal/money"
)

// ErrNoPartyFinder is returned when a point-of-sale screen has no way to
// resolve its walk-in customer.
var ErrNoPartyFinder = errors.New("screen: no client lookup configured")

// Receipt is the backend's answer to a successful submission.
type Receipt struct {
	ID     uint        `json:"id"`
	Number string      `json:"number"`
	Total  money.Cents `json:"total"`
}

// Gateway is the backend a screen reads from and submits to.
type Gateway interface {
	Catalog(ctx context.Context) ([]catalog.Item, error)
	Counterparties(ctx context.Context) ([]catalog.Counterparty, error)
	History(ctx context.Context) ([]history.Record, error)
	Submit(ctx context.Context, s composer.Submission, idempotencyKey string) (Receipt, error)
}

// PartyFinder resolves a client by natural key, creating it when absent.
type PartyFinder interface {
	FindOrCreateClient(ctx context.Context, taxID, name string) (catalog.Counterparty, error)
}

// WalkIn is the customer typed at the point of sale.
type WalkIn struct {
	TaxID string `json:"nit"`
	Name  string `json:"nombre"`
}

// Screen is one composer screen owned by one session. Methods are safe for
// concurrent use; each call runs to completion before the next starts.
type Screen struct {
	mu      sync.Mutex
	profile Profile
	gw      Gateway
	finder  PartyFinder

	comp    *composer.Composer
	hist    *history.List
	walkIn  WalkIn
	notices []Notice
	loc     *time.Location
	newKey  func() string
}

// Option customizes a Screen.
type Option func(*Screen)

// WithPartyFinder sets the client lookup used by the point of sale.
func WithPartyFinder(f PartyFinder) Option { return func(s *Screen) { s.finder = f } }

// WithLocation sets the time zone used by the history date filter.
func WithLocation(loc *time.Location) Option { return func(s *Screen) { s.loc = loc } }

// WithKeyFunc replaces the idempotency key generator.
func WithKeyFunc(fn func() string) Option { return func(s *Screen) { s.newKey = fn } }

func New(p Profile, gw Gateway, opts ...Option) *Screen {
	s := &Screen{
		profile: p,
		gw:      gw,
		comp:    composer.New(p.Composer, nil, nil),
		hist:    history.NewList(p.PageSize),
		loc:     time.UTC,
		newKey:  uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	s.resetWalkIn()
	return s
}

func (s *Screen) Profile() Profile { return s.profile }

func (s *Screen) resetWalkIn() {
	s.walkIn = WalkIn{TaxID: s.profile.WalkInTaxID, Name: s.profile.WalkInName}
}

func (s *Screen) note(n Notice) { s.notices = append(s.notices, n) }

// Load fetches the catalog, the counterparties and the history. Each failure
// becomes a notice; the screen stays usable with whatever loaded.
func (s *Screen) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = nil
	s.loadCatalog(ctx)
	if s.profile.Kind != KindPOS {
		parties, err := s.gw.Counterparties(ctx)
		if err != nil {
			s.loadFailed("counterparties", err)
		} else {
			s.comp.SetCounterparties(parties)
		}
	}
	s.loadHistory(ctx)
}

func (s *Screen) loadCatalog(ctx context.Context) {
	items, err := s.gw.Catalog(ctx)
	if err != nil {
		s.loadFailed("catalog", err)
		return
	}
	if s.profile.Kind.Sales() {
		items = catalog.Active(items)
	}
	s.comp.SetCatalog(items)
}

func (s *Screen) loadHistory(ctx context.Context) {
	recs, err := s.gw.History(ctx)
	if err != nil {
		s.loadFailed("history", err)
		return
	}
	s.hist.Replace(recs)
}

func (s *Screen) loadFailed(what string, err error) {
	log.Printf("screen %s: load %s: %v", s.profile.Kind, what, err)
	s.note(Notice{Level: LevelError, Code: "load_failed", Args: []any{lazyT(what)}})
}

// Apply runs fn against the composer and records a notice for its error.
// The error is returned unchanged; a *composer.StockLimitError means the
// operation was applied with a clamped value.
func (s *Screen) Apply(fn func(c *composer.Composer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = nil
	err := fn(s.comp)
	if err != nil {
		s.note(s.noticeFor(err))
	}
	return err
}

// SetWalkIn records the point-of-sale customer. A blank tax id means the
// configured walk-in id.
func (s *Screen) SetWalkIn(taxID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = nil
	taxID = strings.ToUpper(strings.TrimSpace(taxID))
	if taxID == "" {
		taxID = s.profile.WalkInTaxID
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.profile.WalkInName
	}
	s.walkIn = WalkIn{TaxID: taxID, Name: name}
}

// Submit validates the draft locally and records it. Nothing is sent when
// validation fails. On success the draft is reset and the history reloaded
// at page 1; on failure the draft is left as it was.
func (s *Screen) Submit(ctx context.Context) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = nil

	fail := func(err error) (Receipt, error) {
		s.note(s.noticeFor(err))
		return Receipt{}, err
	}

	if s.profile.Kind == KindPOS {
		if err := s.comp.ValidateLines(); err != nil {
			return fail(err)
		}
		if s.finder == nil {
			return fail(ErrNoPartyFinder)
		}
		cp, err := s.finder.FindOrCreateClient(ctx, s.walkIn.TaxID, s.walkIn.Name)
		if err != nil {
			log.Printf("screen %s: find-or-create %s: %v", s.profile.Kind, s.walkIn.TaxID, err)
			return fail(err)
		}
		s.comp.SetCounterparty(cp)
	}

	sub, err := s.comp.Submission()
	if err != nil {
		return fail(err)
	}
	rec, err := s.gw.Submit(ctx, sub, s.newKey())
	if err != nil {
		log.Printf("screen %s: submit: %v", s.profile.Kind, err)
		return fail(err)
	}

	code := "sale_recorded"
	if !s.profile.Kind.Sales() {
		code = "purchase_recorded"
	}
	s.note(Notice{Level: LevelInfo, Code: code, Args: []any{rec.Number, rec.Total.Format(s.profile.Currency)}})
	s.comp.Reset()
	s.resetWalkIn()
	s.loadHistory(ctx)
	s.loadCatalog(ctx)
	return rec, nil
}

// SetHistoryFilter changes the history filter and returns to page 1.
func (s *Screen) SetHistoryFilter(counterparty, date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hist.SetFilter(history.Filter{Counterparty: counterparty, Date: date, Location: s.loc})
}

// SetHistoryPage moves the history to page p.
func (s *Screen) SetHistoryPage(p int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = nil
	if err := s.hist.SetPage(p); err != nil {
		s.note(s.noticeFor(err))
		return err
	}
	return nil
}

// HistoryRecords returns every record passing the current filter.
func (s *Screen) HistoryRecords() []history.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Filtered()
}

// Notices returns the notices raised by the last action.
func (s *Screen) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notice, len(s.notices))
	copy(out, s.notices)
	return out
}

// lazyT is a message code used as a format argument; it is translated
// together with the notice that carries it.
type lazyT string
