package main

import (
	"fmt"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document>",
	Short: "Check a document for consistency",
	Long: `Reports unknown kinds, duplicate IDs, disallowed children, bad content and
clone sources that are missing or mirror themselves, then builds the tree and
checks its invariants.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := cli.ReadSpec(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if err := schema.ValidateDocument(spec, nil); err != nil {
			for _, verr := range schema.ValidationErrors(err) {
				fmt.Fprintf(out, "  - %v\n", verr)
			}
			return fmt.Errorf("validation failed: %w", err)
		}

		doc, err := strata.Open(spec, cli.DocumentOptions(cfg, logger)...)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if err := doc.Check(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(out, "Document is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
