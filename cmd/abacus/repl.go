package main

import (
	"os"
	"strings"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive calculator session",
	Long: `Reads one expression per line and prints each result. Input can be piped in;
the banner and prompt are only shown on a terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := setup()

		client, err := cli.NewClient(cfg, logger)
		if err != nil {
			fail(err)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		err = cli.RunREPL(ctx, client, os.Stdin, os.Stdout, cli.REPLOptions{
			Interactive: term.IsTerminal(int(os.Stdin.Fd())),
			Version:     strings.TrimSpace(abacus.Version),
			Logger:      logger,
		})
		if err != nil {
			fail(err)
		}
		if sig := ctx.Signal(); sig != nil {
			logger.Debug("Session interrupted", "signal", sig)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
