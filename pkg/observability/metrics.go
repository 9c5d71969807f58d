package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for submissions and HTTP traffic.
type Metrics struct {
	attempts        *prometheus.CounterVec
	retries         *prometheus.CounterVec
	results         *prometheus.CounterVec
	resultDuration  *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abacus_evaluator_attempts_total",
				Help: "Total number of calls made to the evaluator",
			},
			[]string{"outcome"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abacus_evaluator_retries_total",
				Help: "Total number of retries scheduled after a failed call",
			},
			[]string{"kind"},
		),
		results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abacus_submissions_total",
				Help: "Total number of completed submissions",
			},
			[]string{"outcome"},
		),
		resultDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "abacus_submission_duration_seconds",
				Help: "Duration of submissions including retries",
			},
			[]string{"outcome"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "abacus_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "abacus_http_request_duration_seconds",
				Help: "Duration of HTTP requests served",
			},
			[]string{"method", "route"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.attempts, m.retries, m.results, m.resultDuration, m.requests, m.requestDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// Hooks returns pipeline hooks that record attempts, retries and results.
func (m *Metrics) Hooks() domain.PipelineHooks {
	return domain.PipelineHooks{
		OnAttempt: func(_ context.Context, e *domain.AttemptEvent) {
			m.attempts.WithLabelValues(outcome(e.Kind)).Inc()
		},
		OnRetry: func(_ context.Context, e *domain.AttemptEvent) {
			m.retries.WithLabelValues(string(e.Kind)).Inc()
		},
		OnResult: func(_ context.Context, e *domain.ResultEvent) {
			label := "success"
			if !e.Result.OK {
				label = string(e.Result.Kind)
			}
			m.results.WithLabelValues(label).Inc()
			m.resultDuration.WithLabelValues(label).Observe(e.Duration.Seconds())
		},
	}
}

// Middleware records one sample per HTTP request, labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func outcome(kind domain.FailureKind) string {
	if kind == "" {
		return "success"
	}
	return string(kind)
}
