package validation

import (
	"errors"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// New returns a validator that reports fields by their json names.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct runs v over s and converts failures into Violations keyed by the
// json path of the field (e.g. "items[0].cantidad"). Non-validation errors
// are returned as is.
func Struct(v *validatorv10.Validate, s any) (Violations, error) {
	err := v.Struct(s)
	if err == nil {
		return Violations{}, nil
	}
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, err
	}
	out := Violations{}
	for _, fe := range ve {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		out[ns] = code(fe)
	}
	return out, nil
}

func code(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "gt", "gte":
		if fe.Param() == "0" {
			return "must_be_positive"
		}
		return "out_of_range"
	case "min", "max", "lt", "lte":
		return "out_of_range"
	default:
		return fe.Tag()
	}
}
