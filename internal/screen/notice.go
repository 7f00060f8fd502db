package screen

import (
	"errors"

	"github.com/ale3590/fares/i18n"
	"github.com/ale3590/fares/internal/catalog"
	"github.com/ale3590/fares/internal/composer"
	"github.com/ale3590/fares/internal/history"
	"github.com/ale3590/fares/internal/money"
)

// Notice levels.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notice is a message shown to the user after an action. Code and Args are
// localized at render time; Raw is shown verbatim (server-provided text).
type Notice struct {
	Level string
	Code  string
	Args  []any
	Raw   string
}

// Text renders the notice in lang.
func (n Notice) Text(lang string) string {
	if n.Raw != "" {
		return n.Raw
	}
	if len(n.Args) == 0 {
		return i18n.T(lang, n.Code)
	}
	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		if code, ok := a.(lazyT); ok {
			a = i18n.T(lang, string(code))
		}
		args[i] = a
	}
	return i18n.Tf(lang, n.Code, args...)
}

// serverMessenger is implemented by backend errors that carry a message meant
// for the user.
type serverMessenger interface {
	ServerMessage() string
}

func (s *Screen) noticeFor(err error) Notice {
	var (
		nf  *catalog.NotFoundError
		sl  *composer.StockLimitError
		ve  *composer.ValidationError
		msg serverMessenger
	)
	switch {
	case errors.As(err, &sl):
		return Notice{Level: LevelWarning, Code: "stock_limit", Args: []any{sl.Stock, sl.Item}}
	case errors.Is(err, composer.ErrQuantityLimit):
		return Notice{Level: LevelWarning, Code: "quantity_limit", Args: []any{composer.MaxQuantity}}
	case errors.Is(err, money.ErrOutOfRange):
		return Notice{Level: LevelError, Code: "amount_out_of_range"}
	case errors.As(err, &nf):
		return Notice{Level: LevelError, Code: "not_found", Args: []any{nf.Query}}
	case errors.As(err, &ve):
		return Notice{Level: LevelError, Code: s.validationCode(ve)}
	case errors.Is(err, composer.ErrRemovalNotAllowed):
		return Notice{Level: LevelError, Code: "removal_not_allowed"}
	case errors.Is(err, composer.ErrDiscountNotAllowed):
		return Notice{Level: LevelError, Code: "discount_not_allowed"}
	case errors.Is(err, composer.ErrPriceNotEditable):
		return Notice{Level: LevelError, Code: "price_not_editable"}
	case errors.Is(err, history.ErrPageOutOfRange):
		return Notice{Level: LevelError, Code: "page_out_of_range"}
	case errors.As(err, &msg) && msg.ServerMessage() != "":
		return Notice{Level: LevelError, Raw: msg.ServerMessage()}
	case errors.Is(err, composer.ErrLineNotFound), errors.Is(err, composer.ErrLineUnbound),
		errors.Is(err, composer.ErrItemNotFound), errors.Is(err, composer.ErrCounterpartyNotFound):
		return Notice{Level: LevelError, Code: "invalid"}
	default:
		return Notice{Level: LevelError, Code: "connection_error"}
	}
}

func (s *Screen) validationCode(ve *composer.ValidationError) string {
	switch ve.Field {
	case composer.FieldCounterparty:
		if s.profile.Kind.Sales() {
			return "select_client"
		}
		return "select_supplier"
	case composer.FieldLines:
		if s.profile.Composer.PriceSource == composer.PriceManual {
			return "lines_price_required"
		}
		return "lines_required"
	case composer.FieldTotal:
		return "total_out_of_range"
	}
	return "invalid"
}
