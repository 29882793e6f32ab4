package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yashiro/sitecheck/internal/config"
	"github.com/yashiro/sitecheck/internal/history"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Diff the two most recent recorded runs",
		Long: `Compare loads the two most recent runs recorded with 'check --save'
and prints the issues that appeared and the issues that were resolved
between them.`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false, "List recorded runs instead of diffing")
	cmd.Flags().BoolP("json", "j", false, "Output the diff as JSON")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitecheck in current or home directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if found := config.FindConfigFile(configPath); found != "" {
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return fmt.Errorf("load %s: %w", found, err)
		}
		cfg.Apply(file)
	}

	db, err := history.Open(cfg.HistoryDir, history.Options{CreateIfNotExists: false})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if list, _ := cmd.Flags().GetBool("list"); list {
		return listRuns(cmd, db)
	}

	diff, err := db.Compare(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		data, err := json.MarshalIndent(diff, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	printDiff(cmd, diff)
	return nil
}

// listRuns prints the recorded runs, newest first.
func listRuns(cmd *cobra.Command, db *history.DB) error {
	runs, err := db.Runs(cmd.Context(), 20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no recorded runs")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "#%d  %s  %d files, %d issues\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.TotalFiles, r.TotalIssues)
	}
	return nil
}

// printDiff renders the run diff as text.
func printDiff(cmd *cobra.Command, diff *history.Diff) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing run #%d (%s) against run #%d (%s)\n\n",
		diff.Newer.ID, diff.Newer.StartedAt.Format("2006-01-02 15:04:05"),
		diff.Older.ID, diff.Older.StartedAt.Format("2006-01-02 15:04:05"))

	if diff.Unchanged() {
		fmt.Fprintln(out, "no changes between runs")
		return
	}

	if len(diff.New) > 0 {
		fmt.Fprintf(out, "new issues (%d):\n", len(diff.New))
		for _, i := range diff.New {
			fmt.Fprintf(out, "  + %s [%s] %s\n", displayFile(i.File), i.CheckKey, i.Issue)
		}
	}
	if len(diff.Resolved) > 0 {
		fmt.Fprintf(out, "resolved issues (%d):\n", len(diff.Resolved))
		for _, i := range diff.Resolved {
			fmt.Fprintf(out, "  - %s [%s] %s\n", displayFile(i.File), i.CheckKey, i.Issue)
		}
	}
}

// displayFile maps the empty pseudo path of site-level issues to a label.
func displayFile(file string) string {
	if file == "" {
		return "(site)"
	}
	return file
}
