// Loupe is a terminal log viewer: bounded-memory loading of large files,
// inline ANSI color decoding, literal search, and persistent per-file
// bookmarks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calder/loupe/internal/app"
	"github.com/calder/loupe/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "loupe: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "loupe [file]",
		Short: "View log files with search, bookmarks, and highlight rules",
		Long: `Loupe displays a log file with inline ANSI colors, literal search with
cyclic navigation, configurable term highlighting, and bookmarks that
persist per file across sessions.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			opts := app.Options{ConfigPath: configPath}
			if len(args) == 1 {
				opts.FilePath = args[0]
			}
			return app.Run(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "",
		fmt.Sprintf("config file path (default %s)", config.DefaultPath()))
	return cmd
}
