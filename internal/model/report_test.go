package model

import (
	"strings"
	"testing"
)

// TestTruncateIssue tests issue truncation for display.
func TestTruncateIssue(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		issue string
		want  string
	}{
		{
			name:  "short issue unchanged",
			issue: "missing width attribute",
			want:  "missing width attribute",
		},
		{
			name:  "exactly at limit unchanged",
			issue: strings.Repeat("a", MaxIssueDisplayLength),
			want:  strings.Repeat("a", MaxIssueDisplayLength),
		},
		{
			name:  "over limit truncated with ellipsis",
			issue: strings.Repeat("a", MaxIssueDisplayLength+1),
			want:  strings.Repeat("a", MaxIssueDisplayLength-3) + "...",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateIssue(tc.issue); got != tc.want {
				t.Errorf("TruncateIssue() = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestFileReportHasIssues tests issue detection across result kinds.
func TestFileReportHasIssues(t *testing.T) {
	t.Parallel()

	t.Run("empty report is clean", func(t *testing.T) {
		t.Parallel()

		report := NewFileReport("index.html")
		if report.HasIssues() {
			t.Error("empty report should have no issues")
		}
	})

	t.Run("clean checks stay clean", func(t *testing.T) {
		t.Parallel()

		report := NewFileReport("index.html")
		report.Add("invalid_anchors", nil)
		report.Add("duplicate_ids", []string{})
		report.SetFlag("missing_favicon", false)

		if report.HasIssues() {
			t.Error("report with empty results should have no issues")
		}
		if got := report.IssueCount(); got != 0 {
			t.Errorf("IssueCount() = %d, want 0", got)
		}
	})

	t.Run("issue list counts", func(t *testing.T) {
		t.Parallel()

		report := NewFileReport("index.html")
		report.Add("invalid_anchors", []string{"#a", "#b"})

		if !report.HasIssues() {
			t.Error("report with issues should report HasIssues")
		}
		if got := report.IssueCount(); got != 2 {
			t.Errorf("IssueCount() = %d, want 2", got)
		}
	})

	t.Run("failed flag counts as one issue", func(t *testing.T) {
		t.Parallel()

		report := NewFileReport("index.html")
		report.SetFlag("missing_favicon", true)

		if !report.HasIssues() {
			t.Error("failed flag should report HasIssues")
		}
		if got := report.IssueCount(); got != 1 {
			t.Errorf("IssueCount() = %d, want 1", got)
		}
	})
}

// TestFileReportOrdering verifies that results preserve insertion order.
func TestFileReportOrdering(t *testing.T) {
	t.Parallel()

	report := NewFileReport("index.html")
	keys := []string{"invalid_anchors", "duplicate_ids", "metadata_mismatch"}
	for _, key := range keys {
		report.Add(key, nil)
	}

	for i, result := range report.Results {
		if result.Key != keys[i] {
			t.Errorf("Results[%d].Key = %q, want %q", i, result.Key, keys[i])
		}
	}
}

// TestSiteReport tests aggregate counters and the pass/fail signal.
func TestSiteReport(t *testing.T) {
	t.Parallel()

	t.Run("clean walk passes", func(t *testing.T) {
		t.Parallel()

		site := NewSiteReport("public")
		clean := NewFileReport("index.html")
		clean.Add("invalid_anchors", nil)
		site.AddFile(clean)

		if !site.Passed() {
			t.Error("clean walk should pass")
		}
		if got := site.FilesWithIssues(); got != 0 {
			t.Errorf("FilesWithIssues() = %d, want 0", got)
		}
	})

	t.Run("any file issue fails the walk", func(t *testing.T) {
		t.Parallel()

		site := NewSiteReport("public")
		bad := NewFileReport("posts/a.html")
		bad.Add("duplicate_ids", []string{"x (found 2 times)"})
		site.AddFile(bad)
		site.AddFile(NewFileReport("posts/b.html"))

		if site.Passed() {
			t.Error("walk with issues should fail")
		}
		if got := site.FilesWithIssues(); got != 1 {
			t.Errorf("FilesWithIssues() = %d, want 1", got)
		}
		if got := site.TotalFiles; got != 2 {
			t.Errorf("TotalFiles = %d, want 2", got)
		}
	})

	t.Run("global issue alone fails the walk", func(t *testing.T) {
		t.Parallel()

		site := NewSiteReport("public")
		site.AddGlobalIssue("missing root artifact: %s", "robots.txt")

		if site.Passed() {
			t.Error("walk with global issue should fail")
		}
		if got := site.TotalIssues(); got != 1 {
			t.Errorf("TotalIssues() = %d, want 1", got)
		}
	})
}
