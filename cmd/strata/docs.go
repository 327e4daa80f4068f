package main

import (
	"fmt"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/pkg/adapters/file"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/schema"
	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage the documents of the configured store",
}

var docsListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List stored documents",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := cli.OpenBackend(cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		ids, err := backend.Store.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var docsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != string(file.FormatJSON) && format != string(file.FormatYAML) {
			return fmt.Errorf("unsupported format %q", format)
		}

		backend, err := cli.OpenBackend(cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		spec, err := backend.Store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := file.Marshal(spec, file.Format(format))
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(append(data, '\n'))
		return err
	},
}

var docsRemoveCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"remove"},
	Short:   "Delete stored documents",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := cli.OpenBackend(cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		for _, id := range args {
			if err := backend.Store.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete %s: %w", id, err)
			}
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Deleted '%s'.", id)
		}
		return nil
	},
}

var docsImportCmd = &cobra.Command{
	Use:   "import <document>",
	Short: "Validate a document file and save it to the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")

		spec, err := cli.ReadSpec(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if id != "" {
			spec = spec.Clone()
			spec.ID = id
		}
		if err := schema.ValidateDocument(spec, nil); err != nil {
			return err
		}

		sessions, backend, err := openSessions(nil)
		if err != nil {
			return err
		}
		defer backend.Close()

		doc, err := sessions.Import(cmd.Context(), spec)
		if err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Imported '%s' (%d nodes).", doc.ID, countNodes(doc))
		return nil
	},
}

func countNodes(doc *strata.Document) int {
	n := 0
	doc.Spec().Walk(func(string, *domain.NodeSpec) bool {
		n++
		return true
	})
	return n
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsListCmd, docsShowCmd, docsRemoveCmd, docsImportCmd)

	docsShowCmd.Flags().String("format", "yaml", "Output format: json or yaml")
	docsImportCmd.Flags().String("id", "", "Store the document under this ID instead of its own")
}
