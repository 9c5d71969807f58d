package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
)

const maxErrorBody = 64 << 10

// Client implements ports.Evaluator against a remote evaluation API.
//
// A transport failure is returned as-is. A non-2xx status is a *domain.StatusError
// carrying the "error" field of the body when present. A 2xx answer whose body
// cannot be decoded is a *domain.StatusError with that 2xx status.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout bounds each individual call. Retries get a fresh budget.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.http = &http.Client{Timeout: d, Transport: cl.http.Transport}
	}
}

// WithClientLogger configures the structured logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send posts req to the calculate endpoint.
func (c *Client) Send(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return domain.EvaluationResponse{}, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+CalculatePath, bytes.NewReader(payload))
	if err != nil {
		return domain.EvaluationResponse{}, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.RequestID != "" {
		httpReq.Header.Set(RequestIDHeader, req.RequestID)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return domain.EvaluationResponse{}, fmt.Errorf("failed to reach evaluator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &domain.StatusError{Status: resp.StatusCode}
		var body errorBody
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(data, &body) == nil {
			statusErr.Message = body.Error
		}
		c.logger.Debug("Evaluator returned error status", "status", resp.StatusCode, "request_id", req.RequestID)
		return domain.EvaluationResponse{}, statusErr
	}

	var out domain.EvaluationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Warn("Evaluator returned malformed body", "error", err, "request_id", req.RequestID)
		return domain.EvaluationResponse{}, &domain.StatusError{Status: resp.StatusCode, Message: "malformed response body"}
	}
	return out, nil
}
