// Package i18n holds the panel's message catalog. Spanish is the default.
package i18n

import (
	"fmt"
	"strings"
)

const DefaultLang = "es"

var messages = map[string]map[string]string{
	"es": {
		"required":             "Requerido",
		"must_be_positive":     "Debe ser mayor que cero",
		"out_of_range":         "Fuera de rango",
		"invalid":              "Valor inválido",
		"not_found":            "No encontrado: %s",
		"stock_limit":          "Solo hay %d unidades de %s en existencia",
		"select_client":        "Seleccione un cliente",
		"select_supplier":      "Seleccione un proveedor",
		"lines_required":       "Agregue al menos un producto con cantidad mayor a cero",
		"lines_price_required": "Agregue al menos un ítem válido con cantidad y precio mayor a cero",
		"removal_not_allowed":  "Las líneas de venta no se pueden eliminar, solo editar",
		"discount_not_allowed": "Esta pantalla no admite descuentos",
		"price_not_editable":   "El precio proviene del catálogo",
		"load_failed":          "No se pudo cargar %s",
		"connection_error":     "Error de conexión con el servidor",
		"sale_recorded":        "Venta %s registrada por %s",
		"purchase_recorded":    "Ingreso %s registrado por %s",
		"page_out_of_range":    "Página fuera de rango",
		"catalog":              "productos",
		"counterparties":       "contrapartes",
		"history":              "historial",
		"unauthorized":         "No autorizado",
		"invalid_credentials":  "Credenciales inválidas",
		"quantity_limit":       "La cantidad máxima por línea es %d",
		"amount_out_of_range":  "Monto fuera de rango",
		"total_out_of_range":   "El total del pedido excede el máximo permitido",
		"record_not_found":     "Registro no encontrado",
		"forbidden":            "Acceso denegado",
	},
	"en": {
		"required":             "Required",
		"must_be_positive":     "Must be greater than zero",
		"out_of_range":         "Out of range",
		"invalid":              "Invalid value",
		"not_found":            "Not found: %s",
		"stock_limit":          "Only %d units of %s in stock",
		"select_client":        "Select a client",
		"select_supplier":      "Select a supplier",
		"lines_required":       "Add at least one item with quantity greater than zero",
		"lines_price_required": "Add at least one valid item with quantity and price greater than zero",
		"removal_not_allowed":  "Sales lines cannot be removed, only edited",
		"discount_not_allowed": "This screen does not take discounts",
		"price_not_editable":   "The price comes from the catalog",
		"load_failed":          "Could not load %s",
		"connection_error":     "Could not reach the server",
		"sale_recorded":        "Sale %s recorded for %s",
		"purchase_recorded":    "Receipt %s recorded for %s",
		"page_out_of_range":    "Page out of range",
		"catalog":              "products",
		"counterparties":       "counterparties",
		"history":              "history",
		"unauthorized":         "Unauthorized",
		"invalid_credentials":  "Invalid credentials",
		"quantity_limit":       "The most a line can take is %d units",
		"amount_out_of_range":  "Amount out of range",
		"total_out_of_range":   "The order total exceeds the allowed maximum",
		"record_not_found":     "Record not found",
		"forbidden":            "Access denied",
	},
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// DetectLanguage picks the first supported primary tag of an Accept-Language
// header, falling back to DefaultLang.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		tag = strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if Supported(tag) {
			return tag
		}
	}
	return DefaultLang
}

// T translates code. Unknown languages use DefaultLang; unknown codes are
// returned unchanged.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

// Tf translates code and formats it with args.
func Tf(lang, code string, args ...any) string {
	return fmt.Sprintf(T(lang, code), args...)
}
