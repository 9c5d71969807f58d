package abacus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/adapters/cache"
	abacushttp "github.com/aretw0/abacus/pkg/adapters/http"
	"github.com/aretw0/abacus/pkg/adapters/local"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/pipeline"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/submission"
	"github.com/aretw0/abacus/pkg/validator"
)

// Client is the high-level entry point for the Abacus library.
// It wires an Evaluator into a retrying pipeline and hands out submission controllers.
type Client struct {
	evaluator ports.Evaluator
	endpoint  string
	timeout   time.Duration
	cache     ports.ResultCache
	cacheTTL  time.Duration
	policy    pipeline.Policy
	hooks     domain.PipelineHooks
	logger    *slog.Logger
	pipeline  *pipeline.Pipeline
}

// Option defines a functional option for configuring the Client.
type Option func(*Client)

// WithEvaluator injects a custom Evaluator, bypassing the endpoint and the in-process default.
func WithEvaluator(e ports.Evaluator) Option {
	return func(c *Client) {
		c.evaluator = e
	}
}

// WithEndpoint evaluates through the remote API rooted at url.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		c.endpoint = url
	}
}

// WithTimeout bounds each call to the remote API.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCache answers repeated expressions from cache.
func WithCache(rc ports.ResultCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = rc
		c.cacheTTL = ttl
	}
}

// WithPolicy overrides the default retry policy.
func WithPolicy(p pipeline.Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithHooks registers observability hooks.
func WithHooks(h domain.PipelineHooks) Option {
	return func(c *Client) {
		c.hooks = h
	}
}

// WithLogger sets a custom structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New initializes a Client.
// Without WithEvaluator or WithEndpoint, expressions are evaluated in process.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		policy:  pipeline.DefaultPolicy(),
		timeout: 10 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}

	if c.evaluator == nil {
		if c.endpoint != "" {
			c.evaluator = abacushttp.NewClient(c.endpoint,
				abacushttp.WithTimeout(c.timeout),
				abacushttp.WithClientLogger(c.logger),
			)
			c.logger = c.logger.With("endpoint", c.endpoint)
		} else {
			c.evaluator = local.NewEvaluator(nil)
		}
	}
	if c.cache != nil {
		c.evaluator = cache.New(c.evaluator, c.cache,
			cache.WithTTL(c.cacheTTL),
			cache.WithLogger(c.logger),
		)
	}

	c.pipeline = pipeline.New(c.evaluator,
		pipeline.WithPolicy(c.policy),
		pipeline.WithHooks(c.hooks),
		pipeline.WithLogger(c.logger),
	)
	return c, nil
}

// Validate classifies raw input without any network activity.
func (c *Client) Validate(raw string) domain.ValidationOutcome {
	return validator.Validate(raw)
}

// Submit sends an already validated expression through the retrying pipeline.
func (c *Client) Submit(ctx context.Context, expression string) domain.EvaluationResult {
	return c.pipeline.Submit(ctx, expression)
}

// Calculate validates raw and submits it. A rejected expression returns a
// *domain.ValidationError and never reaches the evaluator.
func (c *Client) Calculate(ctx context.Context, raw string) (domain.EvaluationResult, error) {
	req, err := domain.NewEvaluationRequest(c.Validate(raw))
	if err != nil {
		return domain.EvaluationResult{}, err
	}
	return c.Submit(ctx, req.Expression), nil
}

// NewController creates a submission controller backed by this client's pipeline.
func (c *Client) NewController(opts ...submission.Option) *submission.Controller {
	opts = append([]submission.Option{submission.WithLogger(c.logger)}, opts...)
	return submission.New(c.pipeline, opts...)
}

// Pipeline returns the underlying request pipeline.
func (c *Client) Pipeline() *pipeline.Pipeline {
	return c.pipeline
}
