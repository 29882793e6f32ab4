package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yashiro/sitecheck/internal/log"
)

// NewRootCmd creates the root command for sitecheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitecheck",
		Short: "Structural validation for generated static sites",
		Long: `sitecheck validates a static site's generated HTML output against a
catalog of structural and textual rules: dead anchors, unrendered markdown,
missing assets, metadata drift between markdown sources and rendered pages,
and more. It exits non-zero when any issue is found.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the persistent verbose flag.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger builds the logger: text output on stderr with attribute
// values truncated for terminal display.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(log.NewTruncateHandler(handler, log.DefaultMaxValueLength))
}
