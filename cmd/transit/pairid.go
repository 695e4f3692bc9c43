package main

import (
	"fmt"

	"github.com/aretw0/transit/pkg/pairid"
	"github.com/spf13/cobra"
)

var pairidCmd = &cobra.Command{
	Use:   "pairid",
	Short: "Parse and format composite parent:child identifiers",
}

var pairidParseCmd = &cobra.Command{
	Use:   "parse <id>",
	Short: "Split a pair id into its parent and child halves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pairid.Parse(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "parent: %s\nchild:  %s\n", p.ParentID, p.ChildID)
		return nil
	},
}

var pairidFormatCmd = &cobra.Command{
	Use:   "format <parent> <child>",
	Short: "Join a parent and a child id into a pair id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := pairid.Format(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	pairidCmd.AddCommand(pairidParseCmd, pairidFormatCmd)
	rootCmd.AddCommand(pairidCmd)
}
