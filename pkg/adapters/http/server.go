package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// CalculatePath is the evaluation endpoint shared by Server and Client.
const CalculatePath = "/api/calculate"

// RequestIDHeader carries the submission request ID.
const RequestIDHeader = "X-Request-ID"

// Server serves the evaluation API on top of an Evaluator.
type Server struct {
	Evaluator ports.Evaluator

	logger     *slog.Logger
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	gatherer   prometheus.Gatherer
	version    string
	apiVersion string
	routes     routers.Router
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRateLimit limits evaluation requests to limit per second with the given burst.
// A zero limit disables rate limiting.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Server) {
		if limit <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithMetrics records HTTP metrics. When g is not nil, /metrics is served from g.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithVersion sets the application version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewHandler creates a new HTTP handler for the evaluator.
func NewHandler(evaluator ports.Evaluator, opts ...Option) (http.Handler, error) {
	server := &Server{
		Evaluator: evaluator,
		logger:    logging.NewNop(),
		version:   "unknown",
	}
	for _, opt := range opts {
		opt(server)
	}

	doc, routes, err := newSpecRouter(context.Background())
	if err != nil {
		return nil, err
	}
	server.routes = routes
	server.apiVersion = doc.Info.Version

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(server.logRequests)
	r.Use(middleware.Recoverer)
	if server.metrics != nil {
		r.Use(server.metrics.Middleware)
	}
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(Spec())
	})
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.gatherer != nil {
		r.Handle("/metrics", observability.Handler(server.gatherer))
	}
	r.With(server.rateLimit, server.validateRequest).Post(CalculatePath, server.Calculate)

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			s.logger.Warn("Rate limit exceeded", "request_id", middleware.GetReqID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// validateRequest checks the request against the OpenAPI contract.
func (s *Server) validateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, params, err := s.routes.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			msg := strings.SplitN(err.Error(), "\n", 2)[0]
			writeError(w, http.StatusBadRequest, "Invalid request: "+msg)
			s.logger.Warn("Calculate: Request rejected by contract", "error", err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Calculate handles the POST /api/calculate request.
func (s *Server) Calculate(w http.ResponseWriter, r *http.Request) {
	var body domain.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("Calculate: Invalid request body", "error", err)
		return
	}
	if strings.TrimSpace(body.Expression) == "" {
		writeError(w, http.StatusBadRequest, domain.ErrEmptyExpression.Error())
		return
	}
	body.RequestID = middleware.GetReqID(r.Context())

	resp, err := s.Evaluator.Send(r.Context(), body)
	if err != nil {
		var statusErr *domain.StatusError
		if errors.As(err, &statusErr) {
			msg := statusErr.Message
			if msg == "" {
				msg = http.StatusText(statusErr.Status)
			}
			writeError(w, statusErr.Status, msg)
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		s.logger.Error("Calculate failed", "error", err, "request_id", body.RequestID)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "abacus-http",
		"version":     s.version,
		"api_version": s.apiVersion,
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
