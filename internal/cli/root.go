// Package cli wires Cobra subcommands to application dependencies; it is a
// thin controller with no business logic.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/weft-ai/weft/internal/logging"
)

// NewRootCmd creates the root command and registers all subcommands.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "weft",
		Short: "Expand conversation payloads into normalized chat messages",
		// Let main handle fatal error rendering through structured logs.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose {
				logging.SetLevel(slog.LevelDebug)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newExpandCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
