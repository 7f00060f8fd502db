package validation

import (
	"testing"

	validatorv10 "github.com/go-playground/validator/v10"
)

type line struct {
	ProductID uint    `json:"producto_id" validate:"required"`
	Quantity  int     `json:"cantidad" validate:"gt=0"`
	Discount  float64 `json:"descuento" validate:"min=0,max=100"`
}

type order struct {
	ClientID uint   `json:"cliente_id" validate:"required"`
	Items    []line `json:"items" validate:"required,min=1,dive"`
	Total    int64  `json:"total"`
}

func TestStructUsesJSONNames(t *testing.T) {
	v := New()
	got, err := Struct(v, order{Items: []line{{ProductID: 1, Quantity: 0, Discount: 120}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Violations{
		"cliente_id":         "required",
		"items[0].cantidad":  "must_be_positive",
		"items[0].descuento": "out_of_range",
	}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for k, code := range want {
		if got[k] != code {
			t.Errorf("%s: got %q want %q", k, got[k], code)
		}
	}
}

func TestStructLevelCheck(t *testing.T) {
	v := New()
	v.RegisterStructValidation(func(sl validatorv10.StructLevel) {
		o := sl.Current().Interface().(order)
		if o.Total != int64(len(o.Items)) {
			sl.ReportError(o.Total, "total", "Total", "total_mismatch", "")
		}
	}, order{})

	got, err := Struct(v, order{ClientID: 1, Items: []line{{ProductID: 1, Quantity: 1}}, Total: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["total"] != "total_mismatch" {
		t.Fatalf("got %v", got)
	}

	got, _ = Struct(v, order{ClientID: 1, Items: []line{{ProductID: 1, Quantity: 1}}, Total: 1})
	if !got.Empty() {
		t.Fatalf("expected no violations, got %v", got)
	}
}

func TestBasicValidators(t *testing.T) {
	v := Violations{}
	Required("nombre", "  ", v)
	PositiveFloat("precio", 0, v)
	RangeFloat("descuento", 101, 0, 100, v)
	if v["nombre"] != "required" || v["precio"] != "must_be_positive" || v["descuento"] != "out_of_range" {
		t.Fatalf("unexpected %v", v)
	}
}
