package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_Script(t *testing.T) {
	e := NewEvaluator(Status(500, ""), Respond(4))
	ctx := context.Background()

	_, err := e.Send(ctx, domain.EvaluationRequest{Expression: "2 + 2"})
	var statusErr *domain.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 500, statusErr.Status)

	resp, err := e.Send(ctx, domain.EvaluationRequest{Expression: "2 + 2"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), *resp.Result)

	// Script exhausted: last step repeats.
	resp, err = e.Send(ctx, domain.EvaluationRequest{Expression: "2 + 2"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), *resp.Result)
	assert.Equal(t, 3, e.Calls())
}

func TestEvaluator_EmptyScriptIsUnreachable(t *testing.T) {
	_, err := NewEvaluator().Send(context.Background(), domain.EvaluationRequest{})
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestEvaluator_DelayHonoursCancel(t *testing.T) {
	e := NewEvaluator(Step{Delay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Send(ctx, domain.EvaluationRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluator_Release(t *testing.T) {
	release := make(chan struct{})
	step := Respond(1)
	step.Release = release
	e := NewEvaluator(step)

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := e.Send(context.Background(), domain.EvaluationRequest{})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), *resp.Result)
	}()

	select {
	case <-done:
		t.Fatal("Send returned before release")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	<-done
}
