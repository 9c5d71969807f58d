package main

import (
	"strings"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reference calculation API",
	Long: `Serves POST /api/calculate backed by the in-process evaluator, with an optional
Redis result cache, rate limiting and Prometheus metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := setup()

		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("metrics-addr") {
			cfg.Server.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		}
		if cmd.Flags().Changed("redis-url") {
			cfg.Server.RedisURL, _ = cmd.Flags().GetString("redis-url")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		stack, err := cli.NewServerStack(ctx, cfg, logger, strings.TrimSpace(abacus.Version))
		if err != nil {
			fail(err)
		}
		defer stack.Close()

		if err := stack.Serve(ctx, cfg, logger); err != nil {
			fail(err)
		}
		logger.Info("Abacus Server stopped gracefully", "signal", ctx.Signal())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("metrics-addr", "", "Separate address for /metrics")
	serveCmd.Flags().String("redis-url", "", "Redis URL for the result cache")
}
