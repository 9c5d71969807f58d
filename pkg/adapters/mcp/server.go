package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/validator"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// RulesURI is the resource that lists the expression rules.
const RulesURI = "abacus://rules"

// ValidationResponse is the output of the validate_expression tool.
type ValidationResponse struct {
	Valid   bool   `json:"valid" jsonschema_description:"Whether the expression may be submitted"`
	Reason  string `json:"reason,omitempty" jsonschema_description:"Rejection reason identifier"`
	Message string `json:"message,omitempty" jsonschema_description:"Human-readable rejection message"`
}

// CalculationResponse is the output of the calculate tool.
type CalculationResponse struct {
	Valid    bool   `json:"valid" jsonschema_description:"False when the expression was rejected before submission"`
	Result   *int64 `json:"result,omitempty" jsonschema_description:"The computed value"`
	Error    string `json:"error,omitempty" jsonschema_description:"Rejection, evaluator or transport error message"`
	Kind     string `json:"kind,omitempty" jsonschema_description:"Failure kind: network, client, server, unknown or canceled"`
	Attempts int    `json:"attempts" jsonschema_description:"Number of calls made to the evaluator"`
}

// Server exposes expression validation and submission as an MCP server.
type Server struct {
	submitter ports.Submitter
	mcpServer *server.MCPServer
	logger    *slog.Logger
	version   string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version advertised to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(submitter ports.Submitter, opts ...Option) *Server {
	s := &Server{
		submitter: submitter,
		logger:    logging.NewNop(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("abacus-mcp", s.version)
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP server over SSE on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: validate_expression
	validateTool := mcp.NewTool("validate_expression",
		mcp.WithDescription("Check whether an integer arithmetic expression may be submitted, without evaluating it."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Expression such as '3 * -2 + 6'")),
		mcp.WithOutputSchema[ValidationResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	// TOOL: calculate
	calculateTool := mcp.NewTool("calculate",
		mcp.WithDescription("Validate an integer arithmetic expression and evaluate it, retrying transient failures."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Expression such as '3 * -2 + 6'")),
		mcp.WithOutputSchema[CalculationResponse](),
	)
	s.mcpServer.AddTool(calculateTool, mcp.NewStructuredToolHandler(s.handleCalculate))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidationResponse, error) {
	expr, _ := args["expression"].(string)
	outcome := validator.Validate(expr)
	return ValidationResponse{
		Valid:   outcome.Valid,
		Reason:  string(outcome.Reason),
		Message: outcome.Message(),
	}, nil
}

func (s *Server) handleCalculate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CalculationResponse, error) {
	expr, _ := args["expression"].(string)
	outcome := validator.Validate(expr)
	if !outcome.Valid {
		s.logger.Debug("MCP Calculate: Expression rejected", "reason", outcome.Reason)
		return CalculationResponse{Error: outcome.Message()}, nil
	}

	result := s.submitter.Submit(ctx, outcome.Expression)
	resp := CalculationResponse{Valid: true, Attempts: result.Attempts}
	state := domain.StateFromResult(result)
	resp.Result = state.Result
	resp.Error = state.ErrorMessage
	if !result.OK {
		resp.Kind = string(result.Kind)
	}
	return resp, nil
}

func (s *Server) registerResources() {
	// EXPOSE: abacus://rules
	s.mcpServer.AddResource(mcp.NewResource(RulesURI, "Expression Rules",
		mcp.WithMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      RulesURI,
				MIMEType: "text/markdown",
				Text:     validator.Markdown(),
			},
		}, nil
	})
}
