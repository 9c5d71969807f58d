package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/abacus/pkg/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <expression>",
	Short: "Check an expression without evaluating it",
	Long:  `Applies the local validation rules and reports the first one the expression breaks.`,
	Run: func(cmd *cobra.Command, args []string) {
		outcome := validator.Validate(strings.Join(args, " "))
		if !outcome.Valid {
			fmt.Printf("Invalid (%s): %s\n", outcome.Reason, outcome.Message())
			os.Exit(1)
		}
		fmt.Println("Expression is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
