package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/abacus/pkg/adapters/local"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	h, err := NewHandler(local.NewEvaluator(nil), opts...)
	require.NoError(t, err)
	return h
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, CalculatePath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCalculate(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		body   string
		status int
		result any
		err    any
	}{
		{"simple", `{"expression":"2 + 3"}`, http.StatusOK, 5.0, nil},
		{"precedence", `{"expression":"3 * 2 + 1"}`, http.StatusOK, 7.0, nil},
		{"negative", `{"expression":"3 * -2 + 6"}`, http.StatusOK, 0.0, nil},
		{"truncating division", `{"expression":"100 / 3 * 3"}`, http.StatusOK, 99.0, nil},
		{"division by zero", `{"expression":"1 / 0"}`, http.StatusOK, nil, "Division by zero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(h, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			out := decode(t, w)
			assert.Equal(t, tt.result, out["result"])
			assert.Equal(t, tt.err, out["error"])
		})
	}
}

func TestCalculate_BadRequests(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"double operator", `{"expression":"2 + + 3"}`},
		{"invalid operator", `{"expression":"2 & 3"}`},
		{"letters", `{"expression":"abc + 2"}`},
		{"empty", `{"expression":""}`},
		{"blank", `{"expression":"   "}`},
		{"missing field", `{}`},
		{"null field", `{"expression":null}`},
		{"not json", `expression=1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			out := decode(t, w)
			assert.NotEmpty(t, out["error"])
			assert.Nil(t, out["result"])
		})
	}
}

func TestCalculate_EvaluatorErrors(t *testing.T) {
	t.Run("Status Error Is Forwarded", func(t *testing.T) {
		h, err := NewHandler(memory.NewEvaluator(memory.Status(503, "")))
		require.NoError(t, err)
		w := post(h, `{"expression":"1 + 1"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "Service Unavailable", decode(t, w)["error"])
	})

	t.Run("Unexpected Error Is 500", func(t *testing.T) {
		h, err := NewHandler(memory.NewEvaluator(memory.Unreachable()))
		require.NoError(t, err)
		w := post(h, `{"expression":"1 + 1"}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", decode(t, w)["error"])
	})
}

func TestCalculate_RequestID(t *testing.T) {
	eval := memory.NewEvaluator(memory.Respond(2))
	h, err := NewHandler(eval)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, CalculatePath, strings.NewReader(`{"expression":"1 + 1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	require.Len(t, eval.Requests(), 1)
	assert.Equal(t, "req-42", eval.Requests()[0].RequestID)
}

func TestCalculate_RateLimit(t *testing.T) {
	h := newTestHandler(t, WithRateLimit(0.001, 1))

	assert.Equal(t, http.StatusOK, post(h, `{"expression":"1 + 1"}`).Code)

	w := post(h, `{"expression":"1 + 1"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "Too many requests", decode(t, w)["error"])
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t, WithVersion("1.2.3"))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))
	info := decode(t, w)
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestOpenAPISpec(t *testing.T) {
	doc, err := LoadSpec(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Value(CalculatePath))

	h := newTestHandler(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "/api/calculate")
}

func TestCORS(t *testing.T) {
	h := newTestHandler(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, CalculatePath, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	h := newTestHandler(t, WithMetrics(m, reg))

	post(h, `{"expression":"1 + 1"}`)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `abacus_http_requests_total{method="POST",route="/api/calculate",status="200"} 1`)
}

