package main

import (
	"fmt"
	"os"

	"github.com/aretw0/abacus/internal/presentation/tui"
	"github.com/aretw0/abacus/pkg/validator"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the validation rules in evaluation order",
	Run: func(cmd *cobra.Command, args []string) {
		markdown := "# Validation rules\n\nThe first matching rule rejects the expression.\n\n" + validator.Markdown()

		raw, _ := cmd.Flags().GetBool("raw")
		if raw || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Print(markdown)
			return
		}

		out, err := tui.NewRenderer()(markdown)
		if err != nil {
			fail(err)
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().Bool("raw", false, "Print plain markdown")
}
