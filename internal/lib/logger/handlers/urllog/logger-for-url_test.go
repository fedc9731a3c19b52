package urllog_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linemk/airbatu-shop/internal/lib/logger/handlers/urllog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := urllog.CustomLoggerMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("tea"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products?x=1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request completed", rec["msg"])
	assert.Equal(t, "GET", rec["method"])
	assert.Equal(t, "/api/products", rec["url"])
	assert.EqualValues(t, http.StatusTeapot, rec["status"])
	assert.EqualValues(t, 3, rec["bytes"])
}
