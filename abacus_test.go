package abacus_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/abacus"
	abacushttp "github.com/aretw0/abacus/pkg/adapters/http"
	"github.com/aretw0/abacus/pkg/adapters/local"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, strings.TrimSpace(abacus.Version))
}

func TestNew_InvalidPolicy(t *testing.T) {
	_, err := abacus.New(abacus.WithPolicy(pipeline.Policy{MaxRetries: -1}))
	assert.Error(t, err)
}

func TestClient_Calculate_RejectsLocally(t *testing.T) {
	eval := memory.NewEvaluator(memory.Respond(1))
	client, err := abacus.New(abacus.WithEvaluator(eval))
	require.NoError(t, err)

	_, err = client.Calculate(context.Background(), "(1 + 2)")

	assert.ErrorIs(t, err, domain.ErrInvalidExpression)
	assert.EqualError(t, err, "Parentheses are not supported. Please use simple arithmetic expressions")
	assert.Equal(t, 0, eval.Calls())
}

func TestClient_Calculate_Endpoint(t *testing.T) {
	h, err := abacushttp.NewHandler(local.NewEvaluator(nil))
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	client, err := abacus.New(abacus.WithEndpoint(srv.URL), abacus.WithTimeout(time.Second))
	require.NoError(t, err)

	result, err := client.Calculate(context.Background(), "3 * 2 + 1")
	require.NoError(t, err)
	require.True(t, result.OK)
	assert.Equal(t, int64(7), *result.Value)
}

func TestClient_Cache(t *testing.T) {
	eval := memory.NewEvaluator(memory.Respond(4))
	client, err := abacus.New(
		abacus.WithEvaluator(eval),
		abacus.WithCache(memory.NewCache(), time.Minute),
	)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		r, err := client.Calculate(context.Background(), "2 * 2")
		require.NoError(t, err)
		assert.Equal(t, int64(4), *r.Value)
	}
	assert.Equal(t, 1, eval.Calls())
}

func TestClient_Hooks(t *testing.T) {
	var results int
	client, err := abacus.New(abacus.WithHooks(domain.PipelineHooks{
		OnResult: func(context.Context, *domain.ResultEvent) { results++ },
	}))
	require.NoError(t, err)

	client.Submit(context.Background(), "1 + 1")
	assert.Equal(t, 1, results)
	assert.Equal(t, pipeline.DefaultPolicy(), client.Pipeline().Policy())
}
