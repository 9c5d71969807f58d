package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultCacheContract runs a suite of tests to verify that a ResultCache implementation
// adheres to the defined interface contract.
func RunResultCacheContract(t *testing.T, cache ResultCache) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405") + "-"

	t.Run("Set and Get Result", func(t *testing.T) {
		value := int64(42)
		err := cache.Set(ctx, prefix+"6*7", domain.EvaluationResponse{Result: &value}, 0)
		require.NoError(t, err, "Set should not return error")

		got, err := cache.Get(ctx, prefix+"6*7")
		require.NoError(t, err, "Get should not return error")
		require.NotNil(t, got.Result)
		assert.Equal(t, int64(42), *got.Result)
		assert.Nil(t, got.Error)
	})

	t.Run("Set and Get Note", func(t *testing.T) {
		note := "Division by zero"
		err := cache.Set(ctx, prefix+"1/0", domain.EvaluationResponse{Error: &note}, 0)
		require.NoError(t, err)

		got, err := cache.Get(ctx, prefix+"1/0")
		require.NoError(t, err)
		assert.Nil(t, got.Result)
		require.NotNil(t, got.Error)
		assert.Equal(t, note, *got.Error)
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := cache.Get(ctx, prefix+"missing")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Overwrite", func(t *testing.T) {
		one, two := int64(1), int64(2)
		require.NoError(t, cache.Set(ctx, prefix+"k", domain.EvaluationResponse{Result: &one}, 0))
		require.NoError(t, cache.Set(ctx, prefix+"k", domain.EvaluationResponse{Result: &two}, 0))

		got, err := cache.Get(ctx, prefix+"k")
		require.NoError(t, err)
		require.NotNil(t, got.Result)
		assert.Equal(t, int64(2), *got.Result)
	})
}
