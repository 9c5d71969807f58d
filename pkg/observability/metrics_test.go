package observability

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnAttempt(ctx, &domain.AttemptEvent{Kind: domain.FailureNetwork})
	hooks.OnRetry(ctx, &domain.AttemptEvent{Kind: domain.FailureNetwork, Delay: time.Second})
	hooks.OnAttempt(ctx, &domain.AttemptEvent{})
	v := int64(3)
	hooks.OnResult(ctx, &domain.ResultEvent{Result: domain.Success(&v, ""), Duration: time.Second})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("network")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retries.WithLabelValues("network")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.results.WithLabelValues("success")))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", Handler(reg))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/health", "418")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "abacus_http_requests_total")
}

func TestChain(t *testing.T) {
	var order []string
	a := domain.PipelineHooks{OnResult: func(context.Context, *domain.ResultEvent) { order = append(order, "a") }}
	b := domain.PipelineHooks{
		OnResult:  func(context.Context, *domain.ResultEvent) { order = append(order, "b") },
		OnAttempt: func(context.Context, *domain.AttemptEvent) { order = append(order, "attempt") },
	}

	h := Chain(a, domain.PipelineHooks{}, b)
	require.NotNil(t, h.OnResult)
	require.NotNil(t, h.OnAttempt)
	assert.Nil(t, h.OnRetry)

	h.OnResult(context.Background(), &domain.ResultEvent{})
	h.OnAttempt(context.Background(), &domain.AttemptEvent{})
	assert.Equal(t, []string{"a", "b", "attempt"}, order)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := LoggingHooks(logger)

	hooks.OnRetry(context.Background(), &domain.AttemptEvent{
		EventBase: domain.EventBase{RequestID: "req-1"},
		Attempt:   1,
		Kind:      domain.FailureServer,
		Delay:     time.Second,
	})

	out := buf.String()
	assert.True(t, strings.Contains(out, "msg=retry"), out)
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "kind=server")
}
