package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunREPL_Session(t *testing.T) {
	client, err := abacus.New()
	require.NoError(t, err)

	input := strings.Join([]string{
		"2 + 3 * 4",
		"",
		"10 / 0",
		"(1 + 2)",
		":clear",
		":quit",
		"99",
	}, "\n")

	var out bytes.Buffer
	err = RunREPL(context.Background(), client, strings.NewReader(input), &out, REPLOptions{})
	require.NoError(t, err)

	expected := "= 14\n" +
		"! Division by zero\n" +
		"? " + validator.Validate("(1 + 2)").Message() + "\n" +
		">>> Cleared.\n"
	assert.Equal(t, expected, out.String())
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	client, err := abacus.New()
	require.NoError(t, err)

	var out bytes.Buffer
	err = RunREPL(context.Background(), client, strings.NewReader("7"), &out, REPLOptions{})
	require.NoError(t, err)
	assert.Equal(t, "= 7\n", out.String())
}

func TestRunREPL_Interactive(t *testing.T) {
	client, err := abacus.New()
	require.NoError(t, err)

	var out bytes.Buffer
	err = RunREPL(context.Background(), client, strings.NewReader(":help\n"), &out, REPLOptions{
		Interactive: true,
		Version:     "v0.0.1",
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "integer calculator v0.0.1")
	assert.Contains(t, out.String(), prompt)
	assert.Contains(t, out.String(), ":clear")
}

func TestRunREPL_ContextCancelled(t *testing.T) {
	client, err := abacus.New()
	require.NoError(t, err)

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = RunREPL(ctx, client, pr, io.Discard, REPLOptions{})
	assert.NoError(t, err)
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Setenv("ABACUS_ENDPOINT", "")
	t.Setenv("ABACUS_LOG_LEVEL", "")

	cfg, err := LoadConfig(GlobalOptions{
		ConfigPath: "does-not-exist.yaml",
		Endpoint:   "http://localhost:9090",
		LogLevel:   "debug",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090", cfg.Endpoint)
	assert.Equal(t, "debug", cfg.LogLevel)

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	_, err = NewClient(cfg, logger)
	assert.NoError(t, err)
}
