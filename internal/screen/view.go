package screen

import (
	"github.com/ale3590/fares/internal/catalog"
	"github.com/ale3590/fares/internal/composer"
	"github.com/ale3590/fares/internal/history"
	"github.com/ale3590/fares/internal/money"
)

// LineView is one rendered draft line.
type LineView struct {
	Index    int         `json:"index"`
	Editable bool        `json:"editable"`
	ItemID   uint        `json:"item_id,omitempty"`
	Label    string      `json:"label,omitempty"`
	Search   string      `json:"search,omitempty"`
	Stock    int         `json:"stock,omitempty"`
	LowStock bool        `json:"low_stock,omitempty"`
	Quantity int         `json:"quantity"`
	Discount float64     `json:"discount"`
	Price    money.Cents `json:"price"`
	Subtotal money.Cents `json:"subtotal"`
}

// NoticeView is a rendered notice.
type NoticeView struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Options tells the client which controls the screen offers.
type Options struct {
	AllowRemoval  bool `json:"allow_removal"`
	AllowDiscount bool `json:"allow_discount"`
	ManualPrice   bool `json:"manual_price"`
	StockBound    bool `json:"stock_bound"`
}

// View is the rendered state of a screen.
type View struct {
	Kind               Kind                  `json:"kind"`
	Title              string                `json:"title"`
	Options            Options               `json:"options"`
	Lines              []LineView            `json:"lines"`
	Counterparty       *catalog.Counterparty `json:"counterparty"`
	CounterpartySearch string                `json:"counterparty_search,omitempty"`
	WalkIn             *WalkIn               `json:"walk_in,omitempty"`
	Total              money.Cents           `json:"total"`
	TotalText          string                `json:"total_text"`
	History            history.Page          `json:"history"`
	HistoryFilter      history.Filter        `json:"history_filter"`
	Notices            []NoticeView          `json:"notices"`
}

// View renders the screen in lang.
func (s *Screen) View(lang string) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.profile.Composer
	v := View{
		Kind:  s.profile.Kind,
		Title: s.profile.Title,
		Options: Options{
			AllowRemoval:  cfg.AllowRemoval,
			AllowDiscount: cfg.AllowDiscount,
			ManualPrice:   cfg.PriceSource == composer.PriceManual,
			StockBound:    cfg.QuantityBound == composer.BoundStock,
		},
		Lines:              make([]LineView, 0),
		Counterparty:       s.comp.Counterparty(),
		CounterpartySearch: s.comp.CounterpartySearch(),
		Total:              s.comp.Total(),
		History:            s.hist.Current(),
		HistoryFilter:      s.hist.Filter(),
		Notices:            make([]NoticeView, 0, len(s.notices)),
	}
	v.TotalText = v.Total.Format(s.profile.Currency)
	if s.profile.Kind == KindPOS {
		w := s.walkIn
		v.WalkIn = &w
	}
	for i, l := range s.comp.Lines() {
		lv := LineView{
			Index:    i,
			Editable: !l.Bound(),
			Search:   l.Search,
			Quantity: l.Quantity,
			Discount: l.Discount,
			Price:    l.Price,
			Subtotal: l.Subtotal(),
		}
		if l.Item != nil {
			lv.ItemID = l.Item.ID
			lv.Label = l.Item.Label()
			lv.Stock = l.Item.Stock
			lv.LowStock = l.Item.LowStock()
		}
		v.Lines = append(v.Lines, lv)
	}
	for _, n := range s.notices {
		v.Notices = append(v.Notices, NoticeView{Level: n.Level, Message: n.Text(lang)})
	}
	return v
}
