package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yashiro/sitecheck/internal/config"
	"github.com/yashiro/sitecheck/internal/history"
	"github.com/yashiro/sitecheck/internal/model"
	"github.com/yashiro/sitecheck/internal/report"
	"github.com/yashiro/sitecheck/internal/walker"
)

// ErrIssuesFound makes the process exit non-zero when the site has
// issues; the report itself has already been written when it is returned.
var ErrIssuesFound = errors.New("validation issues found")

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a generated site against its markdown sources",
		Long: `Check walks every HTML file under the site directory, runs the full
check battery against each page, cross-checks metadata and asset references
against the markdown sources, and verifies site-level artifacts (robots.txt,
favicons, the RSS feed, the CSS bundle).

Examples:
  # Check the default ./public against ./content
  sitecheck check

  # Check explicit directories with the iframe reachability probes
  sitecheck check --site-dir ./out --content-dir ./src --check-iframes

  # Machine-readable output, recorded into the history database
  sitecheck check --json --save`,
		Args: cobra.NoArgs,
		RunE: runCheckCmd,
	}

	cmd.Flags().StringP("site-dir", "s", config.DefaultSiteDir,
		"Generated site output directory")
	cmd.Flags().StringP("content-dir", "d", config.DefaultContentDir,
		"Markdown source directory")
	cmd.Flags().Bool("check-fonts", false,
		"Include the font preload check")
	cmd.Flags().Bool("check-favicons", false,
		"Flag pages that never reference the site favicon")
	cmd.Flags().Bool("check-iframes", false,
		"Probe absolute iframe srcs over the network")
	cmd.Flags().StringSlice("skip", nil,
		"Check names to skip (repeatable)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to the specified file as well as stdout")
	cmd.Flags().Bool("save", false,
		"Record the run in the history database")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitecheck in current or home directory)")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling")
		cancel()
	}()

	siteReport, err := walker.New(cfg, walker.WithLogger(logger)).Walk(ctx)
	if err != nil {
		return err
	}

	writer, cleanup, err := buildWriter(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	if _, err := writer.Write(siteReport); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if cfg.SaveHistory {
		if err := saveRun(ctx, cfg, siteReport, logger); err != nil {
			return err
		}
	}

	if !siteReport.Passed() {
		return fmt.Errorf("%d issues in %d files: %w",
			siteReport.TotalIssues(), siteReport.FilesWithIssues(), ErrIssuesFound)
	}
	return nil
}

// buildConfig assembles the configuration from flags and the optional
// config file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	if cfg.SiteDir, err = cmd.Flags().GetString("site-dir"); err != nil {
		return nil, err
	}
	if cfg.ContentDir, err = cmd.Flags().GetString("content-dir"); err != nil {
		return nil, err
	}
	if cfg.CheckFonts, err = cmd.Flags().GetBool("check-fonts"); err != nil {
		return nil, err
	}
	if cfg.CheckFavicons, err = cmd.Flags().GetBool("check-favicons"); err != nil {
		return nil, err
	}
	if cfg.CheckIframes, err = cmd.Flags().GetBool("check-iframes"); err != nil {
		return nil, err
	}
	if cfg.SkipChecks, err = cmd.Flags().GetStringSlice("skip"); err != nil {
		return nil, err
	}
	if cfg.JSONOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownOutput, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.OutputPath, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.SaveHistory, err = cmd.Flags().GetBool("save"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if found := config.FindConfigFile(configPath); found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", found, err)
		}
		cfg.Apply(file)
	}

	return cfg, nil
}

// buildWriter selects the report format and wires the optional output
// file. The returned cleanup closes the file.
func buildWriter(cmd *cobra.Command, cfg *config.Config) (report.Writer, func(), error) {
	newWriter := func(out io.Writer) report.Writer {
		switch {
		case cfg.JSONOutput:
			return report.NewJSONWriter(out, report.WithPrettyPrint())
		case cfg.MarkdownOutput:
			return report.NewMarkdownWriter(out)
		default:
			return report.NewTextWriter(out)
		}
	}

	stdout := newWriter(cmd.OutOrStdout())
	if cfg.OutputPath == "" {
		return stdout, func() {}, nil
	}

	if dir := filepath.Dir(cfg.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(cfg.OutputPath) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	cleanup := func() { _ = f.Close() }
	return report.NewMultiWriter(stdout, newWriter(f)), cleanup, nil
}

// saveRun records the report in the history database.
func saveRun(ctx context.Context, cfg *config.Config, siteReport *model.SiteReport, logger *slog.Logger) error {
	db, err := history.Open(cfg.HistoryDir, history.DefaultOptions())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	runID, err := db.SaveRun(ctx, siteReport)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	logger.Info("run recorded", slog.Int64("run_id", runID))
	return nil
}
