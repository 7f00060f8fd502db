package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupStdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), "fares-test", "stdout", "", &buf)
	require.NoError(t, err)

	h := Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), "health")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "fares-test")
}

func TestSetupNone(t *testing.T) {
	shutdown, err := Setup(context.Background(), "x", "none", "", nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, err = Setup(context.Background(), "x", "zipkin", "", nil)
	assert.Error(t, err)
}
