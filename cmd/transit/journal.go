package main

import (
	"fmt"

	"github.com/aretw0/transit/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the transaction logs of past imports",
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the operations that have a journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := journals().List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var journalShowCmd = &cobra.Command{
	Use:   "show <operation-id>",
	Short: "Render the journal of an operation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := journals().Read(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return tui.Write(cmd.OutOrStdout(), tui.JournalMarkdown(args[0], entries))
	},
}

func init() {
	journalCmd.AddCommand(journalListCmd, journalShowCmd)
	rootCmd.AddCommand(journalCmd)
}
