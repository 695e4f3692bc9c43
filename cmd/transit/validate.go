package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [definitions]",
	Short: "Check dependency definitions for consistency",
	Long: `Loads the dependency definitions, validates their adapter settings and
constructs every handler. All problems are reported at once.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine(cmd.Context(), definitionsPath(args), "")
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d definitions are valid! ✅\n", len(eng.Types()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
