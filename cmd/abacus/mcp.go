package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/cli"
	"github.com/aretw0/abacus/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the calculator as MCP tools (validate_expression, calculate) and the
validation rules as the abacus://rules resource.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, logger := setup()
		client, err := cli.NewClient(cfg, logger)
		if err != nil {
			fail(err)
		}

		srv := mcp.NewServer(client,
			mcp.WithLogger(logger),
			mcp.WithVersion(strings.TrimSpace(abacus.Version)),
		)

		switch transport {
		case "stdio":
			// Stdout carries JSON-RPC.
			log.SetOutput(os.Stderr)
			logger.Info("Starting Abacus MCP Server (Stdio)")
			if err := srv.ServeStdio(); err != nil {
				fail(fmt.Errorf("MCP server execution failed: %w", err))
			}
		case "sse":
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()

			if err := srv.ServeSSE(ctx, port); err != nil {
				fail(fmt.Errorf("MCP server execution failed: %w", err))
			}
			logger.Info("MCP Server stopped gracefully")
		default:
			fail(fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport))
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
