package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <document>",
	Short: "Print the layer outline of a document",
	Long: `Loads a document (.json/.yaml snapshot, markdown file or repository
directory) and prints its attached nodes in stacking order. On a terminal the
outline is rendered with glamour.

With --watch the outline is printed again every time the markdown file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		watch, _ := cmd.Flags().GetBool("watch")
		out := cmd.OutOrStdout()
		opts := cli.DocumentOptions(cfg, logger)

		if !watch {
			doc, err := cli.OpenDocument(cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}
			return printOutline(out, doc, asJSON)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		tui.PrintBanner(out)
		return cli.Watch(sigCtx, args[0], func(doc *strata.Document, err error) {
			if err != nil {
				cli.PrintSystemMessage(out, "Reload failed: %v", err)
				return
			}
			if err := printOutline(out, doc, asJSON); err != nil {
				logger.Error("render outline", "err", err)
			}
			cli.PrintSystemMessage(out, "Watching '%s' for changes...", args[0])
		}, opts...)
	},
}

func printOutline(w io.Writer, doc *strata.Document, asJSON bool) error {
	entries := doc.Inspect()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	md := tui.OutlineMarkdown(doc.Title, entries)
	if f, ok := w.(*os.File); ok && tui.IsTerminal(f) {
		rendered, err := tui.NewRenderer()(md)
		if err == nil {
			md = rendered
		}
	}
	_, err := fmt.Fprint(w, md)
	return err
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Print the outline as JSON")
	inspectCmd.Flags().BoolP("watch", "w", false, "Reprint the outline when the markdown document changes")
}
