package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	JSONMessage(rr, http.StatusConflict, "duplicate", "NIT ya registrado")
	if rr.Code != http.StatusConflict {
		t.Fatalf("status %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q", ct)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"error":"duplicate","message":"NIT ya registrado"}` {
		t.Fatalf("body %s", got)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"nombre"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nombre":"a","x":1}`))
	if err := DecodeJSON(r, &v); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nombre":"a"}`))
	if err := DecodeJSON(r, &v); err != nil || v.Name != "a" {
		t.Fatalf("decode: %v %q", err, v.Name)
	}
}
