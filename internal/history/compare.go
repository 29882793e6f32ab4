package history

import (
	"context"
	"fmt"
	"sort"
)

// Diff is the difference between the two most recent recorded runs.
type Diff struct {
	// Older and Newer identify the compared runs.
	Older Run `json:"older"`
	Newer Run `json:"newer"`

	// New contains issues present in the newer run only.
	New []Issue `json:"new,omitempty"`

	// Resolved contains issues present in the older run only.
	Resolved []Issue `json:"resolved,omitempty"`
}

// Unchanged reports whether the two runs found exactly the same issues.
func (d *Diff) Unchanged() bool {
	return len(d.New) == 0 && len(d.Resolved) == 0
}

// Compare diffs the two most recent runs.
func (h *DB) Compare(ctx context.Context) (*Diff, error) {
	runs, err := h.Runs(ctx, 2)
	if err != nil {
		return nil, err
	}
	if len(runs) < 2 {
		return nil, ErrNotEnoughRuns
	}
	newer, older := runs[0], runs[1]

	newerIssues, err := h.RunIssues(ctx, newer.ID)
	if err != nil {
		return nil, err
	}
	olderIssues, err := h.RunIssues(ctx, older.ID)
	if err != nil {
		return nil, err
	}

	diff := &Diff{
		Older:    older,
		Newer:    newer,
		New:      subtract(newerIssues, olderIssues),
		Resolved: subtract(olderIssues, newerIssues),
	}
	sortIssues(diff.New)
	sortIssues(diff.Resolved)
	return diff, nil
}

// subtract returns the issues in a that are not in b.
// Identity is the (file, check, issue) triple: the same text on a
// different file is a different issue.
func subtract(a, b []Issue) []Issue {
	present := make(map[string]bool, len(b))
	for _, i := range b {
		present[issueKey(i)] = true
	}

	var out []Issue
	for _, i := range a {
		if !present[issueKey(i)] {
			out = append(out, i)
		}
	}
	return out
}

// issueKey builds the identity string for set comparison.
func issueKey(i Issue) string {
	return fmt.Sprintf("%s\x00%s\x00%s", i.File, i.CheckKey, i.Issue)
}

// sortIssues orders issues by file, then check, then text.
func sortIssues(issues []Issue) {
	sort.Slice(issues, func(a, b int) bool {
		x, y := issues[a], issues[b]
		if x.File != y.File {
			return x.File < y.File
		}
		if x.CheckKey != y.CheckKey {
			return x.CheckKey < y.CheckKey
		}
		return x.Issue < y.Issue
	})
}
