package main

import (
	"fmt"

	"github.com/aretw0/transit/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <type> <id>",
	Short: "Export the dependency closure of an object as a Mermaid diagram",
	Long: `Walks the closure of an object in a captured server snapshot and outputs a
Mermaid diagram (graph TD). Branch failures are reported on stderr.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, _ := cmd.Flags().GetString("snapshot")
		defs, _ := cmd.Flags().GetString("defs")
		if defs == "" {
			defs = cfg.Definitions
		}

		eng, err := newEngine(cmd.Context(), defs, snapshot)
		if err != nil {
			return err
		}
		root, err := eng.Lookup(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		closure, err := eng.Discover(cmd.Context(), root)
		if closure == nil {
			return err
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Closure is incomplete: %v\n", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(closure, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("snapshot", "", "Server snapshot to inspect (YAML)")
	graphCmd.Flags().String("defs", "", "Dependency definitions (defaults to the configured path)")
	_ = graphCmd.MarkFlagRequired("snapshot")
}
