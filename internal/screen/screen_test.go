package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ale3590/fares/internal/catalog"
	"github.com/ale3590/fares/internal/composer"
	"github.com/ale3590/fares/internal/history"
	"github.com/ale3590/fares/internal/money"
)

type fakeGateway struct {
	mu        sync.Mutex
	items     []catalog.Item
	parties   []catalog.Counterparty
	records   []history.Record
	submitted []composer.Submission
	keys      []string
	submitErr error
	loadErr   error
}

func (f *fakeGateway) Catalog(context.Context) ([]catalog.Item, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.items, nil
}

func (f *fakeGateway) Counterparties(context.Context) ([]catalog.Counterparty, error) {
	return f.parties, nil
}

func (f *fakeGateway) History(context.Context) ([]history.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]history.Record, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeGateway) Submit(_ context.Context, s composer.Submission, key string) (Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, s)
	f.keys = append(f.keys, key)
	if f.submitErr != nil {
		return Receipt{}, f.submitErr
	}
	id := uint(len(f.records) + 1)
	name := ""
	for _, p := range f.parties {
		if p.ID == s.CounterpartyID {
			name = p.Name
		}
	}
	rec := history.Record{ID: id, Number: fmt.Sprintf("V-%06d", id), Counterparty: name, Total: s.Total, Date: time.Now()}
	f.records = append([]history.Record{rec}, f.records...)
	return Receipt{ID: id, Number: rec.Number, Total: s.Total}, nil
}

type serverErr struct{ msg string }

func (e *serverErr) Error() string         { return "api: " + e.msg }
func (e *serverErr) ServerMessage() string { return e.msg }

type fakeFinder struct {
	calls   int
	created catalog.Counterparty
	err     error
}

func (f *fakeFinder) FindOrCreateClient(_ context.Context, taxID, name string) (catalog.Counterparty, error) {
	f.calls++
	if f.err != nil {
		return catalog.Counterparty{}, f.err
	}
	f.created = catalog.Counterparty{ID: 42, Name: name, TaxID: taxID}
	return f.created, nil
}

func newGateway() *fakeGateway {
	return &fakeGateway{
		items: []catalog.Item{
			{ID: 1, Code: "A1", Name: "Widget", PublicPrice: 10000, Stock: 10},
			{ID: 2, Code: "B2", Name: "Gadget", PublicPrice: 500, Stock: 2, Inactive: true},
		},
		parties: []catalog.Counterparty{{ID: 7, Code: "CL-7", Name: "Ferretería Luna"}},
	}
}

func loaded(t *testing.T, kind Kind, gw *fakeGateway, opts ...Option) *Screen {
	t.Helper()
	s := New(DefaultProfiles()[kind], gw, opts...)
	s.Load(context.Background())
	require.Empty(t, s.Notices())
	return s
}

func TestEndToEndInvoice(t *testing.T) {
	gw := newGateway()
	s := loaded(t, KindInvoicing, gw)

	require.NoError(t, s.Apply(func(c *composer.Composer) error {
		i := c.AddLine()
		if err := c.SelectItem(i, 1); err != nil {
			return err
		}
		if _, err := c.SetQuantity(i, 3); err != nil {
			return err
		}
		_, err := c.SetDiscount(i, 10)
		return err
	}))
	require.NoError(t, s.Apply(func(c *composer.Composer) error { return c.SelectCounterparty(7) }))

	v := s.View("es")
	require.Len(t, v.Lines, 1)
	assert.Equal(t, money.Cents(27000), v.Lines[0].Subtotal)
	assert.Equal(t, "Q 270.00", v.TotalText)

	rec, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, money.Cents(27000), rec.Total)
	require.Len(t, gw.submitted, 1)
	assert.Equal(t, uint(7), gw.submitted[0].CounterpartyID)
	assert.NotEmpty(t, gw.keys[0])

	v = s.View("es")
	assert.Empty(t, v.Lines)
	assert.Nil(t, v.Counterparty)
	require.Len(t, v.History.Records, 1)
	assert.Equal(t, "270.00", v.History.Records[0].Total.String())
	assert.Equal(t, 1, v.History.Number)
	require.Len(t, v.Notices, 1)
	assert.Equal(t, "Venta V-000001 registrada por Q 270.00", v.Notices[0].Message)
}

func TestSubmitRejectedLocally(t *testing.T) {
	gw := newGateway()
	s := loaded(t, KindInvoicing, gw)

	_, err := s.Submit(context.Background())
	var ve *composer.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, composer.FieldCounterparty, ve.Field)
	assert.Equal(t, "Select a client", s.View("en").Notices[0].Message)

	_ = s.Apply(func(c *composer.Composer) error {
		c.AddLine()
		return c.SelectCounterparty(7)
	})
	_, err = s.Submit(context.Background())
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, composer.FieldLines, ve.Field)

	assert.Empty(t, gw.submitted, "no network call on local validation failure")
}

func TestSubmitFailurePreservesDraft(t *testing.T) {
	gw := newGateway()
	s := loaded(t, KindInvoicing, gw)
	_ = s.Apply(func(c *composer.Composer) error {
		c.AddLine()
		_ = c.SelectItem(0, 1)
		return c.SelectCounterparty(7)
	})

	gw.submitErr = &serverErr{msg: "Stock insuficiente para Widget"}
	_, err := s.Submit(context.Background())
	require.Error(t, err)
	v := s.View("en")
	assert.Equal(t, "Stock insuficiente para Widget", v.Notices[0].Message, "server message shown verbatim")
	assert.Len(t, v.Lines, 1)
	assert.NotNil(t, v.Counterparty)

	gw.submitErr = errors.New("dial tcp: connection refused")
	_, err = s.Submit(context.Background())
	require.Error(t, err)
	v = s.View("en")
	assert.Equal(t, "Could not reach the server", v.Notices[0].Message)
	assert.Len(t, v.Lines, 1)
	assert.Equal(t, 2, len(gw.keys))
	assert.NotEqual(t, gw.keys[0], gw.keys[1])
}

func TestPointOfSaleFindsOrCreatesClient(t *testing.T) {
	gw := newGateway()
	gw.parties = append(gw.parties, catalog.Counterparty{ID: 42, Name: "Consumidor Final"})
	finder := &fakeFinder{}
	s := loaded(t, KindPOS, gw, WithPartyFinder(finder))

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	assert.Zero(t, finder.calls, "lines are validated before the lookup")

	_ = s.Apply(func(c *composer.Composer) error {
		c.AddLine()
		return c.SelectItem(0, 1)
	})
	s.SetWalkIn("  ", "")
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, finder.calls)
	assert.Equal(t, "C/F", finder.created.TaxID)
	assert.Equal(t, uint(42), gw.submitted[0].CounterpartyID)

	v := s.View("es")
	require.NotNil(t, v.WalkIn)
	assert.Equal(t, "C/F", v.WalkIn.TaxID)
}

func TestPointOfSaleLookupFailure(t *testing.T) {
	gw := newGateway()
	finder := &fakeFinder{err: &serverErr{msg: "NIT inválido"}}
	s := loaded(t, KindPOS, gw, WithPartyFinder(finder))
	_ = s.Apply(func(c *composer.Composer) error {
		c.AddLine()
		return c.SelectItem(0, 1)
	})
	s.SetWalkIn("123-k", "Ana")
	_, err := s.Submit(context.Background())
	require.Error(t, err)
	assert.Empty(t, gw.submitted)
	assert.Equal(t, "NIT inválido", s.View("es").Notices[0].Message)
	assert.Len(t, s.View("es").Lines, 1)
}

func TestSalesScreensHideInactiveItems(t *testing.T) {
	gw := newGateway()
	s := loaded(t, KindInvoicing, gw)
	err := s.Apply(func(c *composer.Composer) error {
		c.AddLine()
		return c.SelectItem(0, 2)
	})
	assert.ErrorIs(t, err, composer.ErrItemNotFound)

	r := loaded(t, KindReceiving, gw)
	require.NoError(t, r.Apply(func(c *composer.Composer) error {
		c.AddLine()
		return c.SelectItem(0, 2)
	}))
}

func TestApplyRecordsNotices(t *testing.T) {
	gw := newGateway()
	s := loaded(t, KindInvoicing, gw)
	err := s.Apply(func(c *composer.Composer) error {
		i := c.AddLine()
		_ = c.SelectItem(i, 1)
		_, err := c.SetQuantity(i, 50)
		return err
	})
	var sl *composer.StockLimitError
	require.ErrorAs(t, err, &sl)
	v := s.View("es")
	require.Len(t, v.Notices, 1)
	assert.Equal(t, LevelWarning, v.Notices[0].Level)
	assert.Equal(t, "Solo hay 10 unidades de A1 - Widget en existencia", v.Notices[0].Message)
	assert.Equal(t, 10, v.Lines[0].Quantity)

	_ = s.Apply(func(c *composer.Composer) error {
		i := c.AddLine()
		_, _ = c.SearchLine(i, "z")
		return c.AcceptLine(i)
	})
	assert.Equal(t, "Not found: z", s.View("en").Notices[0].Message)

	assert.ErrorIs(t, s.Apply(func(c *composer.Composer) error { return c.RemoveLine(0) }), composer.ErrRemovalNotAllowed)
}

func TestLoadFailureBecomesNotice(t *testing.T) {
	gw := newGateway()
	gw.loadErr = errors.New("boom")
	s := New(DefaultProfiles()[KindReceiving], gw)
	s.Load(context.Background())
	v := s.View("es")
	require.Len(t, v.Notices, 1)
	assert.Equal(t, "No se pudo cargar productos", v.Notices[0].Message)
}

func TestHistoryPaging(t *testing.T) {
	gw := newGateway()
	for i := 1; i <= 12; i++ {
		gw.records = append(gw.records, history.Record{ID: uint(i), Counterparty: "Luna", Total: 100})
	}
	s := loaded(t, KindPOS, gw)
	require.NoError(t, s.SetHistoryPage(3))
	assert.Len(t, s.View("es").History.Records, 2)
	assert.ErrorIs(t, s.SetHistoryPage(4), history.ErrPageOutOfRange)
	assert.Equal(t, 3, s.View("es").History.Number)

	s.SetHistoryFilter("nadie", "")
	assert.Empty(t, s.HistoryRecords())
	assert.Equal(t, 1, s.View("es").History.TotalPages)
}

func TestRegistry(t *testing.T) {
	gw := newGateway()
	created := 0
	r := NewRegistry(func(_ context.Context, _ string, kind Kind) (*Screen, error) {
		created++
		return New(DefaultProfiles()[kind], gw), nil
	})
	ctx := context.Background()

	a, err := r.Get(ctx, "s1", KindInvoicing)
	require.NoError(t, err)
	b, err := r.Get(ctx, "s1", KindInvoicing)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, _ = r.Get(ctx, "s1", KindPOS)
	_, _ = r.Get(ctx, "s2", KindInvoicing)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, created)

	r.Drop("s1")
	assert.Equal(t, 1, r.Len())
}

func TestRegistryPrunesIdleScreens(t *testing.T) {
	gw := newGateway()
	r := NewRegistry(func(_ context.Context, _ string, kind Kind) (*Screen, error) {
		return New(DefaultProfiles()[kind], gw), nil
	})
	now := time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = r.Get(ctx, "s1", KindInvoicing)
	_, _ = r.Get(ctx, "s2", KindReceiving)
	now = now.Add(20 * time.Minute)
	_, _ = r.Get(ctx, "s2", KindReceiving)

	assert.Equal(t, 1, r.Prune(15*time.Minute))
	assert.Equal(t, 1, r.Len(), "recently used screen stays")

	now = now.Add(time.Hour)
	assert.Equal(t, 1, r.Prune(15*time.Minute))
	assert.Equal(t, 0, r.Len())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("pos")
	require.NoError(t, err)
	assert.Equal(t, KindPOS, k)
	_, err = ParseKind("admin")
	assert.Error(t, err)
}
