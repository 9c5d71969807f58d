package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/observability"
)

// GlobalOptions are the persistent flags shared by every command.
// Non-empty values override the configuration file.
type GlobalOptions struct {
	ConfigPath string
	Endpoint   string
	LogLevel   string
}

// LoadConfig reads the configuration file and applies the flag overrides.
func LoadConfig(opts GlobalOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = opts.Endpoint
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	return cfg, nil
}

// NewLogger builds the stderr logger for the configured level.
func NewLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// NewClient builds an abacus client from the configuration.
// At debug level every pipeline event is traced as well.
func NewClient(cfg config.Config, logger *slog.Logger, hooks ...domain.PipelineHooks) (*abacus.Client, error) {
	var all []domain.PipelineHooks
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		all = append(all, observability.LoggingHooks(logger))
	}
	all = append(all, hooks...)

	client, err := abacus.New(
		abacus.WithEndpoint(cfg.Endpoint),
		abacus.WithTimeout(cfg.Timeout),
		abacus.WithPolicy(cfg.Policy()),
		abacus.WithHooks(observability.Chain(all...)),
		abacus.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing abacus: %w", err)
	}
	return client, nil
}
