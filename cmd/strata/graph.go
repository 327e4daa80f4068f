package main

import (
	"fmt"

	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <document>",
	Short: "Export the layer tree as a Mermaid diagram",
	Long:  `Outputs a Mermaid flowchart (graph TD) with containment edges and dotted clone-to-source edges.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		highlight, _ := cmd.Flags().GetStringSlice("highlight")

		doc, err := cli.OpenDocument(cmd.Context(), args[0], cli.DocumentOptions(cfg, logger)...)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if len(highlight) > 0 {
			overlay = &graph.GraphOverlay{Highlighted: highlight}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc.Spec(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringSlice("highlight", nil, "Node IDs to highlight")
}
