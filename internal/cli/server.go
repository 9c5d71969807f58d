package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/pkg/adapters/cache"
	abacushttp "github.com/aretw0/abacus/pkg/adapters/http"
	"github.com/aretw0/abacus/pkg/adapters/local"
	"github.com/aretw0/abacus/pkg/adapters/redis"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	shutdownTimeout = 5 * time.Second
	fillLockTTL     = 5 * time.Second
)

// ServerStack is the reference evaluation server assembled from configuration.
type ServerStack struct {
	// API serves the calculation API. It also serves /metrics unless a
	// separate metrics address is configured.
	API http.Handler
	// Metrics is set only when the configuration has a metrics address.
	Metrics http.Handler

	closers []func() error
}

// NewServerStack wires the in-process evaluator, the optional Redis result
// cache, metrics and rate limiting behind the HTTP handler.
func NewServerStack(ctx context.Context, cfg config.Config, logger *slog.Logger, version string) (*ServerStack, error) {
	stack := &ServerStack{}

	var evaluator ports.Evaluator = local.NewEvaluator(nil)
	if cfg.Server.RedisURL != "" {
		rc, err := redis.NewFromURL(cfg.Server.RedisURL)
		if err != nil {
			return nil, err
		}
		stack.closers = append(stack.closers, rc.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			stack.Close()
			return nil, fmt.Errorf("redis unavailable: %w", err)
		}

		evaluator = cache.New(evaluator, rc,
			cache.WithTTL(cfg.Server.CacheTTL),
			cache.WithLocker(redis.NewLocker(rc.Client(), "abacus:"), fillLockTTL),
			cache.WithLogger(logger),
		)
		logger.Info("Result cache enabled", "ttl", cfg.Server.CacheTTL)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		stack.Close()
		return nil, err
	}

	var gatherer prometheus.Gatherer = reg
	if cfg.Server.MetricsAddr != "" {
		gatherer = nil
		stack.Metrics = observability.Handler(reg)
	}

	stack.API, err = abacushttp.NewHandler(evaluator,
		abacushttp.WithLogger(logger),
		abacushttp.WithRateLimit(rate.Limit(cfg.Server.RateLimit), cfg.Server.Burst),
		abacushttp.WithMetrics(metrics, gatherer),
		abacushttp.WithVersion(version),
	)
	if err != nil {
		stack.Close()
		return nil, err
	}
	return stack, nil
}

// Close releases the backing connections.
func (s *ServerStack) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Serve runs the API listener, and the metrics listener when configured,
// until ctx is done. In-flight requests get a grace period to finish.
func (s *ServerStack) Serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	servers := []*http.Server{{Addr: cfg.Server.Addr, Handler: s.API}}
	if s.Metrics != nil {
		servers = append(servers, &http.Server{Addr: cfg.Server.MetricsAddr, Handler: s.Metrics})
	}

	listeners := make([]net.Listener, 0, len(servers))
	for _, srv := range servers {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			for _, l := range listeners {
				l.Close()
			}
			return fmt.Errorf("could not listen on %s: %w", srv.Addr, err)
		}
		listeners = append(listeners, ln)
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range servers {
		srv, ln := srv, listeners[i]
		logger.Info("Server listening", "address", ln.Addr().String())

		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
			}
			return nil
		})
	}
	return g.Wait()
}
