package history

import (
	"context"
	"errors"
	"testing"

	"github.com/yashiro/sitecheck/internal/model"
)

// openTestDB opens a fresh database in a temporary directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// reportWith builds a site report with the given per-file issues.
func reportWith(issues map[string][]string, global ...string) *model.SiteReport {
	report := model.NewSiteReport("./public")
	for path, list := range issues {
		f := model.NewFileReport(path)
		f.Add("unrendered_artifacts", list)
		report.AddFile(f)
	}
	for _, g := range global {
		report.AddGlobalIssue("%s", g)
	}
	return report
}

// TestSaveAndLoadRun tests round-tripping a run through the database.
func TestSaveAndLoadRun(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	report := reportWith(map[string][]string{
		"a.html": {"issue one", "issue two"},
	}, "missing root artifact: robots.txt")

	runID, err := db.SaveRun(ctx, report)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	runs, err := db.Runs(ctx, 10)
	if err != nil {
		t.Fatalf("Runs() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].ID != runID {
		t.Errorf("run id = %d, want %d", runs[0].ID, runID)
	}
	if runs[0].TotalIssues != 3 {
		t.Errorf("TotalIssues = %d, want 3", runs[0].TotalIssues)
	}

	issues, err := db.RunIssues(ctx, runID)
	if err != nil {
		t.Fatalf("RunIssues() error = %v", err)
	}
	if len(issues) != 3 {
		t.Fatalf("got %d issues, want 3", len(issues))
	}
	if issues[0].File != "a.html" || issues[0].Issue != "issue one" {
		t.Errorf("first issue = %+v", issues[0])
	}
}

// TestSaveRunRecordsFlags tests that failed flag results are stored.
func TestSaveRunRecordsFlags(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	report := model.NewSiteReport("./public")
	f := model.NewFileReport("b.html")
	f.SetFlag("missing_favicon", true)
	report.AddFile(f)

	runID, err := db.SaveRun(ctx, report)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	issues, err := db.RunIssues(ctx, runID)
	if err != nil {
		t.Fatalf("RunIssues() error = %v", err)
	}
	if len(issues) != 1 || issues[0].CheckKey != "missing_favicon" {
		t.Errorf("issues = %+v, want one missing_favicon entry", issues)
	}
}

// TestCompare tests diffing the two most recent runs.
func TestCompare(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.SaveRun(ctx, reportWith(map[string][]string{
		"a.html": {"old issue", "stable issue"},
	})); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if _, err := db.SaveRun(ctx, reportWith(map[string][]string{
		"a.html": {"stable issue", "fresh issue"},
	})); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	diff, err := db.Compare(ctx)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(diff.New) != 1 || diff.New[0].Issue != "fresh issue" {
		t.Errorf("New = %+v, want [fresh issue]", diff.New)
	}
	if len(diff.Resolved) != 1 || diff.Resolved[0].Issue != "old issue" {
		t.Errorf("Resolved = %+v, want [old issue]", diff.Resolved)
	}
	if diff.Unchanged() {
		t.Error("Unchanged() = true, want false")
	}
}

// TestCompareNeedsTwoRuns tests the sentinel for a fresh database.
func TestCompareNeedsTwoRuns(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.Compare(ctx); !errors.Is(err, ErrNotEnoughRuns) {
		t.Errorf("error = %v, want ErrNotEnoughRuns", err)
	}

	if _, err := db.SaveRun(ctx, reportWith(nil)); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if _, err := db.Compare(ctx); !errors.Is(err, ErrNotEnoughRuns) {
		t.Errorf("error after one run = %v, want ErrNotEnoughRuns", err)
	}
}

// TestOpenWithoutCreate tests that a missing database is an error.
func TestOpenWithoutCreate(t *testing.T) {
	t.Parallel()

	if _, err := Open(t.TempDir(), Options{CreateIfNotExists: false}); err == nil {
		t.Error("Open() on empty dir should fail without CreateIfNotExists")
	}
}
