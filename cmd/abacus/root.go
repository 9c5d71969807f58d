package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/abacus/internal/cli"
	"github.com/aretw0/abacus/internal/config"
	"github.com/spf13/cobra"
)

var globalOpts cli.GlobalOptions

var rootCmd = &cobra.Command{
	Use:   "abacus",
	Short: "Abacus is an integer calculator with a validating, retrying client",
	Long: `Abacus validates arithmetic expressions locally and evaluates them either in
process or through a remote calculation API, retrying transient failures.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fail(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigPath, "config", config.DefaultPath, "Configuration file")
	rootCmd.PersistentFlags().StringVar(&globalOpts.Endpoint, "endpoint", "", "Base URL of the calculation API (empty evaluates in process)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// setup loads the configuration and logger, exiting on failure.
func setup() (config.Config, *slog.Logger) {
	cfg, err := cli.LoadConfig(globalOpts)
	if err != nil {
		fail(err)
	}
	logger, err := cli.NewLogger(cfg)
	if err != nil {
		fail(err)
	}
	return cfg, logger
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
