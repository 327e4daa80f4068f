package main

import (
	"fmt"
	"os"

	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/internal/script"
	"github.com/aretw0/strata/pkg/adapters/file"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <document> <script>",
	Short: "Apply an operation script to a document",
	Long: `Runs the operations of a YAML or JSON script (add, remove, move, set_source,
undo, redo, batch) against a document and writes the result.

Snapshot files are rewritten in place unless --output is given. Markdown
documents are read-only: the result goes to --output, or to stdout as YAML.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		src, err := cli.ResolveSource(args[0])
		if err != nil {
			return err
		}
		s, err := script.Load(args[1])
		if err != nil {
			return err
		}
		doc, err := cli.OpenDocument(cmd.Context(), args[0], cli.DocumentOptions(cfg, logger)...)
		if err != nil {
			return err
		}

		before := doc.Spec()
		results, err := s.Run(cmd.Context(), doc)
		if err != nil {
			return err
		}
		created := 0
		for _, r := range results {
			created += len(r.Created)
		}
		cli.PrintSystemMessage(os.Stderr, "Applied %d operation(s), %d node(s) created.", len(results), created)
		if diff := domain.Diff(before, doc.Spec()); diff != nil {
			cli.PrintSystemMessage(os.Stderr, "Changes: %d added, %d removed, %d moved, %d retargeted.",
				len(diff.Added), len(diff.Removed), len(diff.Moved), len(diff.Retargeted))
		} else {
			cli.PrintSystemMessage(os.Stderr, "No structural changes.")
		}

		if dryRun {
			return nil
		}
		if output == "" && !src.IsRepo() {
			output = src.Path
		}
		if output == "" {
			data, err := file.Marshal(doc.Spec(), file.FormatYAML)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := file.WriteDocument(output, doc.Spec()); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
		cli.PrintSystemMessage(os.Stderr, "Wrote '%s'.", output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringP("output", "o", "", "File to write the resulting snapshot to (.json or .yaml)")
	applyCmd.Flags().Bool("dry-run", false, "Apply the script without writing the result")
}
