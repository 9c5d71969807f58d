package cli

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/calculate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServerStack_InProcess(t *testing.T) {
	cfg := config.Default()

	stack, err := NewServerStack(context.Background(), cfg, logging.NewNop(), "test")
	require.NoError(t, err)
	defer stack.Close()

	assert.Nil(t, stack.Metrics)

	rec := post(t, stack.API, `{"expression":"2 + 3 * 4"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":14,"error":null}`, rec.Body.String())

	rec = httptest.NewRecorder()
	stack.API.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "abacus_http_requests_total")
}

func TestNewServerStack_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Server.RedisURL = "redis://" + mr.Addr()
	cfg.Server.MetricsAddr = "127.0.0.1:0"

	stack, err := NewServerStack(context.Background(), cfg, logging.NewNop(), "test")
	require.NoError(t, err)
	defer stack.Close()

	require.NotNil(t, stack.Metrics)

	rec := post(t, stack.API, `{"expression":"2 + 2"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":4,"error":null}`, rec.Body.String())
	assert.True(t, mr.Exists("abacus:result:2 + 2"))

	rec = httptest.NewRecorder()
	stack.API.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewServerStack_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Server.RedisURL = "redis://" + addr

	_, err := NewServerStack(context.Background(), cfg, logging.NewNop(), "test")
	assert.ErrorContains(t, err, "redis unavailable")
}

func TestServerStack_ServeUntilCancelled(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"

	stack, err := NewServerStack(context.Background(), cfg, logging.NewNop(), "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- stack.Serve(ctx, cfg, logging.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerStack_ServeRejectsBusyAddress(t *testing.T) {
	busy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer busy.Close()

	cfg := config.Default()
	cfg.Server.Addr = strings.TrimPrefix(busy.URL, "http://")

	stack, err := NewServerStack(context.Background(), cfg, logging.NewNop(), "test")
	require.NoError(t, err)

	err = stack.Serve(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "could not listen")
}
