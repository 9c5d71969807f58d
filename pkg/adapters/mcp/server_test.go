package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/pipeline"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newTestServer(steps ...memory.Step) (*Server, *memory.Evaluator) {
	eval := memory.NewEvaluator(steps...)
	p := pipeline.New(eval, pipeline.WithSleeper(noSleep))
	return NewServer(p, WithVersion("test")), eval
}

func TestHandleValidate(t *testing.T) {
	s, _ := newTestServer()

	resp, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"expression": "3 * -2 + 6"})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Message)

	resp, err = s.handleValidate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"expression": "(1 + 2)"})
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, string(domain.ReasonParenthesesNotAllowed), resp.Reason)
	assert.Equal(t, domain.ReasonParenthesesNotAllowed.Message(), resp.Message)

	resp, err = s.handleValidate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ReasonRequired), resp.Reason)
}

func TestHandleCalculate(t *testing.T) {
	t.Run("Value", func(t *testing.T) {
		s, eval := newTestServer(memory.Status(502, ""), memory.Respond(0))
		resp, err := s.handleCalculate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"expression": "3 * -2 + 6"})
		require.NoError(t, err)
		assert.True(t, resp.Valid)
		require.NotNil(t, resp.Result)
		assert.Equal(t, int64(0), *resp.Result)
		assert.Empty(t, resp.Error)
		assert.Equal(t, 2, resp.Attempts)
		assert.Equal(t, 2, eval.Calls())
	})

	t.Run("Rejected Locally", func(t *testing.T) {
		s, eval := newTestServer(memory.Respond(1))
		resp, err := s.handleCalculate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"expression": "1.5 + 2"})
		require.NoError(t, err)
		assert.False(t, resp.Valid)
		assert.Equal(t, domain.ReasonDecimalNotAllowed.Message(), resp.Error)
		assert.Equal(t, 0, eval.Calls())
	})

	t.Run("Note", func(t *testing.T) {
		s, _ := newTestServer(memory.RespondNote("Division by zero"))
		resp, err := s.handleCalculate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"expression": "1 / 0"})
		require.NoError(t, err)
		assert.Nil(t, resp.Result)
		assert.Equal(t, "Division by zero", resp.Error)
		assert.Empty(t, resp.Kind)
	})

	t.Run("Failure", func(t *testing.T) {
		s, _ := newTestServer(memory.Unreachable())
		resp, err := s.handleCalculate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"expression": "1 + 1"})
		require.NoError(t, err)
		assert.Equal(t, domain.MessageNetwork, resp.Error)
		assert.Equal(t, "network", resp.Kind)
		assert.Equal(t, 4, resp.Attempts)
	})
}
