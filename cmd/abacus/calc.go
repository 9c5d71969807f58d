package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/abacus/internal/cli"
	"github.com/aretw0/abacus/internal/presentation/tui"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/spf13/cobra"
)

type calcOutput struct {
	Result   *int64             `json:"result"`
	Error    string             `json:"error,omitempty"`
	Kind     domain.FailureKind `json:"kind,omitempty"`
	Reason   domain.Reason      `json:"reason,omitempty"`
	Attempts int                `json:"attempts"`
}

var calcCmd = &cobra.Command{
	Use:   "calc [expression]",
	Short: "Evaluate a single expression",
	Long: `Validates the expression and evaluates it, retrying transient failures.
Without arguments the expression is read from the first line of standard input.`,
	Run: func(cmd *cobra.Command, args []string) {
		jsonMode, _ := cmd.Flags().GetBool("json")
		cfg, logger := setup()

		raw := strings.Join(args, " ")
		if len(args) == 0 {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				fail(fmt.Errorf("no expression given"))
			}
			raw = line
		}

		client, err := cli.NewClient(cfg, logger)
		if err != nil {
			fail(err)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		result, err := client.Calculate(ctx, raw)

		var verr *domain.ValidationError
		if err != nil && !errors.As(err, &verr) {
			fail(err)
		}

		if jsonMode {
			out := calcOutput{Result: result.Value, Kind: result.Kind, Attempts: result.Attempts}
			switch {
			case verr != nil:
				out.Error, out.Reason = verr.Error(), verr.Reason
			case result.OK:
				out.Error = result.Note
			default:
				out.Error = result.Message
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				fail(err)
			}
		} else {
			printer := tui.NewPrinter(os.Stdout)
			if verr != nil {
				printer.Rejection(verr.Error())
			} else {
				printer.Result(result)
			}
		}

		if verr != nil || !result.OK {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(calcCmd)
	calcCmd.Flags().Bool("json", false, "Print the outcome as JSON")
}
