package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/ale3590/fares/httpx"
	"github.com/ale3590/fares/internal/money"
	"github.com/ale3590/fares/internal/services"
	"github.com/ale3590/fares/validation"
)

var validate = newValidator()

func newValidator() *validatorv10.Validate {
	v := validation.New()
	v.RegisterStructValidation(func(sl validatorv10.StructLevel) {
		r := sl.Current().Interface().(saleRequest)
		checkTotal(sl, r.Items, r.Total)
	}, saleRequest{})
	v.RegisterStructValidation(func(sl validatorv10.StructLevel) {
		r := sl.Current().Interface().(purchaseRequest)
		for i, it := range r.Items {
			if it.Discount != 0 {
				sl.ReportError(it.Discount, fmt.Sprintf("items[%d].descuento", i), "Discount", "discount_not_allowed", "")
			}
		}
		checkTotal(sl, r.Items, r.Total)
	}, purchaseRequest{})
	return v
}

// checkTotal reports a total that disagrees with the lines. Lines out of
// range are left to their field tags.
func checkTotal(sl validatorv10.StructLevel, items []lineRequest, total money.Cents) {
	want, err := linesTotal(items)
	switch {
	case errors.Is(err, errLineRange):
	case err != nil:
		sl.ReportError(total, "total", "Total", "out_of_range", "")
	case want != total:
		sl.ReportError(total, "total", "Total", "total_mismatch", "")
	}
}

// Quantity and price bounds match money.MaxQuantity and money.MaxCents.
type lineRequest struct {
	ProductID uint        `json:"producto_id" validate:"required"`
	Quantity  int         `json:"cantidad" validate:"gt=0,lte=1000000"`
	Discount  float64     `json:"descuento" validate:"gte=0,lte=100"`
	Price     money.Cents `json:"precio" validate:"gte=0,lte=10000000000"`
}

type saleRequest struct {
	ClientID uint          `json:"cliente_id" validate:"required"`
	Items    []lineRequest `json:"items" validate:"required,min=1,dive"`
	Total    money.Cents   `json:"total" validate:"gte=0"`
}

type purchaseRequest struct {
	SupplierID uint          `json:"proveedor_id" validate:"required"`
	Items      []lineRequest `json:"items" validate:"required,min=1,dive"`
	Total      money.Cents   `json:"total" validate:"gte=0"`
}

var errLineRange = errors.New("line out of range")

// linesTotal is the total the submitting screen should have computed.
func linesTotal(items []lineRequest) (money.Cents, error) {
	subs := make([]money.Cents, len(items))
	for i, it := range items {
		sub, err := money.LineAmount(it.Price, it.Quantity, it.Discount)
		if err != nil {
			return 0, errLineRange
		}
		subs[i] = sub
	}
	return money.Sum(subs...)
}

func lineInputs(items []lineRequest) []services.LineInput {
	out := make([]services.LineInput, len(items))
	for i, it := range items {
		out[i] = services.LineInput{ProductID: it.ProductID, Quantity: it.Quantity, Discount: it.Discount, Price: it.Price}
	}
	return out
}

// decodeOrder reads and validates a sale or purchase body. It writes the
// error response itself and reports false on failure.
func decodeOrder(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONMessage(w, http.StatusBadRequest, "invalid_json", "Solicitud inválida")
		return false
	}
	v, err := validation.Struct(validate, dst)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", nil)
		return false
	}
	if !v.Empty() {
		msg := "Detalle inválido"
		switch {
		case v["total"] == "total_mismatch":
			msg = "El total no coincide con el detalle"
		case hasCode(v, "discount_not_allowed"):
			msg = "Las compras no admiten descuento"
		}
		httpx.JSON(w, http.StatusBadRequest, httpx.ErrorResponse{Error: "validation_failed", Message: msg, Details: v})
		return false
	}
	return true
}

// writeServiceError maps a recording failure to a status and a message the
// screens show verbatim.
func writeServiceError(w http.ResponseWriter, err error) {
	var se *services.StockError
	switch {
	case errors.As(err, &se):
		httpx.JSONMessage(w, http.StatusConflict, "insufficient_stock", se.Error())
	case errors.Is(err, services.ErrTotalMismatch):
		httpx.JSONMessage(w, http.StatusUnprocessableEntity, "total_mismatch", "El total no coincide con el detalle")
	case errors.Is(err, services.ErrClientNotFound):
		httpx.JSONMessage(w, http.StatusNotFound, "client_not_found", "Cliente no encontrado")
	case errors.Is(err, services.ErrSupplierNotFound):
		httpx.JSONMessage(w, http.StatusNotFound, "supplier_not_found", "Proveedor no encontrado")
	case errors.Is(err, services.ErrProductNotFound):
		httpx.JSONMessage(w, http.StatusNotFound, "product_not_found", "Producto no encontrado en la línea "+lineNumber(err))
	case errors.Is(err, services.ErrProductInactive):
		httpx.JSONMessage(w, http.StatusUnprocessableEntity, "product_inactive", "Producto inactivo en la línea "+lineNumber(err))
	case errors.Is(err, services.ErrEmptyOrder), errors.Is(err, services.ErrInvalidLine):
		httpx.JSONMessage(w, http.StatusBadRequest, "invalid_line", "Detalle inválido")
	default:
		log.Printf("[orders] record failed: %v", err)
		httpx.JSONMessage(w, http.StatusInternalServerError, "server_error", "Error del servidor")
	}
}

func hasCode(v validation.Violations, code string) bool {
	for _, c := range v {
		if c == code {
			return true
		}
	}
	return false
}

func lineNumber(err error) string {
	var le *services.LineError
	if errors.As(err, &le) {
		return strconv.Itoa(le.Index + 1)
	}
	return "?"
}
