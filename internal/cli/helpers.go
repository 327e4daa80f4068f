package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/config"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/pkg/observability"
)

// NewLogger configures the application logger from cfg.
// It writes to Stderr so that rendered output on Stdout stays clean.
func NewLogger(cfg config.Config) *slog.Logger {
	if cfg.Debug {
		return logging.New(slog.LevelDebug)
	}
	if cfg.LogLevel == "" {
		return logging.NewNop()
	}
	return logging.New(cfg.Level())
}

// DocumentOptions builds the options every CLI-opened document shares.
// In debug mode structural notifications are logged as well as commands.
func DocumentOptions(cfg config.Config, logger *slog.Logger) []strata.Option {
	opts := []strata.Option{
		strata.WithLogger(logger),
		strata.WithDebug(cfg.Debug),
		strata.WithHistoryLimit(cfg.HistoryLimit),
		strata.WithLifecycleHooks(observability.LogHooks(logger)),
	}
	if cfg.Debug {
		opts = append(opts, strata.WithListener(observability.NewLogListener(logger)))
	}
	return opts
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
