package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfg    = config.Default()
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Strata edits clone-aware layer trees",
	Long: `Strata inspects, validates and edits layer documents: trees of groups,
paint layers, clones, filters and masks with a symmetric undo history.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("debug") {
			loaded.Debug, _ = cmd.Flags().GetBool("debug")
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		logger = cli.NewLogger(cfg)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Configuration file (defaults to ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose logging and strict invariant checks")
}
