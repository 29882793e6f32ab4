package model

import (
	"fmt"
	"time"
)

// MaxIssueDisplayLength is the maximum length of an issue string as shown
// in reports. Longer issues are truncated with an ellipsis so that a single
// pathological page cannot flood the terminal.
const MaxIssueDisplayLength = 200

// TruncateIssue shortens an issue string to MaxIssueDisplayLength runes.
// The original string is returned unchanged when it fits.
func TruncateIssue(issue string) string {
	runes := []rune(issue)
	if len(runes) <= MaxIssueDisplayLength {
		return issue
	}
	return string(runes[:MaxIssueDisplayLength-3]) + "..."
}

// CheckResult holds the outcome of one named check for one file.
// A result is either a list of issue strings or a boolean flag; flag
// results are used by presence/absence checks such as "missing favicon".
type CheckResult struct {
	// Key is the check name under which issues are grouped.
	Key string `json:"key"`

	// Issues contains one human-readable string per violation.
	// Nil for flag results.
	Issues []string `json:"issues,omitempty"`

	// Flag is the boolean outcome for presence/absence checks.
	// True means the check failed.
	Flag bool `json:"flag,omitempty"`

	// IsFlag distinguishes a flag result from an empty issue list.
	IsFlag bool `json:"is_flag,omitempty"`
}

// Failed reports whether this result represents at least one violation.
func (r CheckResult) Failed() bool {
	if r.IsFlag {
		return r.Flag
	}
	return len(r.Issues) > 0
}

// IssueCount returns the number of violations in this result.
// A failed flag counts as one violation.
func (r CheckResult) IssueCount() int {
	if r.IsFlag {
		if r.Flag {
			return 1
		}
		return 0
	}
	return len(r.Issues)
}

// FileReport collects all check results for one HTML file.
// Results keep registry order so output is deterministic across runs.
// A FileReport is created fresh per file and discarded once aggregated
// into the SiteReport.
type FileReport struct {
	// Path is the file path relative to the site root.
	Path string `json:"path"`

	// Results holds one entry per executed check, in execution order.
	Results []CheckResult `json:"results"`
}

// NewFileReport creates an empty report for the given relative path.
func NewFileReport(path string) *FileReport {
	return &FileReport{
		Path:    path,
		Results: make([]CheckResult, 0),
	}
}

// Add records the issue list produced by the named check.
// Empty lists are recorded too; writers decide whether to show clean checks.
func (f *FileReport) Add(key string, issues []string) {
	f.Results = append(f.Results, CheckResult{Key: key, Issues: issues})
}

// SetFlag records a boolean presence/absence result for the named check.
func (f *FileReport) SetFlag(key string, failed bool) {
	f.Results = append(f.Results, CheckResult{Key: key, Flag: failed, IsFlag: true})
}

// HasIssues reports whether any check recorded a violation for this file.
func (f *FileReport) HasIssues() bool {
	for _, r := range f.Results {
		if r.Failed() {
			return true
		}
	}
	return false
}

// IssueCount returns the total number of violations across all checks.
func (f *FileReport) IssueCount() int {
	var n int
	for _, r := range f.Results {
		n += r.IssueCount()
	}
	return n
}

// SiteReport is the aggregate result of one full site walk.
type SiteReport struct {
	// SiteDir is the checked output directory.
	SiteDir string `json:"site_dir"`

	// StartedAt is when the walk began.
	StartedAt time.Time `json:"started_at"`

	// Files contains the per-file reports, in walk order.
	// Clean files are included with empty results.
	Files []*FileReport `json:"files"`

	// GlobalIssues contains site-level problems that belong to no single
	// page: missing root artifacts, CSS sanity failures, RSS problems,
	// and duplicate citation keys.
	GlobalIssues []string `json:"global_issues,omitempty"`

	// TotalFiles is the number of HTML files checked.
	TotalFiles int `json:"total_files"`
}

// NewSiteReport creates an empty site report for the given directory.
func NewSiteReport(siteDir string) *SiteReport {
	return &SiteReport{
		SiteDir:   siteDir,
		StartedAt: time.Now(),
		Files:     make([]*FileReport, 0),
	}
}

// AddFile appends a per-file report and updates the file counter.
func (s *SiteReport) AddFile(report *FileReport) {
	s.Files = append(s.Files, report)
	s.TotalFiles++
}

// AddGlobalIssue records a site-level problem.
func (s *SiteReport) AddGlobalIssue(format string, args ...any) {
	s.GlobalIssues = append(s.GlobalIssues, fmt.Sprintf(format, args...))
}

// FilesWithIssues returns how many files reported at least one violation.
func (s *SiteReport) FilesWithIssues() int {
	var n int
	for _, f := range s.Files {
		if f.HasIssues() {
			n++
		}
	}
	return n
}

// TotalIssues returns the number of violations across all files plus
// site-level issues.
func (s *SiteReport) TotalIssues() int {
	n := len(s.GlobalIssues)
	for _, f := range s.Files {
		n += f.IssueCount()
	}
	return n
}

// Passed reports whether the walk finished without a single violation.
// This drives the process exit code: any issue anywhere fails the run.
func (s *SiteReport) Passed() bool {
	return s.TotalIssues() == 0
}
