package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/yashiro/sitecheck/internal/model"
)

// TextWriter renders the report as human-readable terminal output:
// issues grouped under a heading per file, then site-level issues, then a
// one-line summary. Clean files are not listed.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter for the given destination.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the report.
func (w *TextWriter) Write(report *model.SiteReport) (int, error) {
	var sb strings.Builder

	for _, f := range report.Files {
		if !f.HasIssues() {
			continue
		}
		fmt.Fprintf(&sb, "%s\n%s\n", f.Path, strings.Repeat("-", len(f.Path)))
		for _, r := range f.Results {
			if !r.Failed() {
				continue
			}
			if r.IsFlag {
				fmt.Fprintf(&sb, "  [%s]\n", r.Key)
				continue
			}
			fmt.Fprintf(&sb, "  [%s]\n", r.Key)
			for _, issue := range r.Issues {
				fmt.Fprintf(&sb, "    - %s\n", model.TruncateIssue(issue))
			}
		}
		sb.WriteString("\n")
	}

	if len(report.GlobalIssues) > 0 {
		sb.WriteString("site\n----\n")
		for _, issue := range report.GlobalIssues {
			fmt.Fprintf(&sb, "  - %s\n", model.TruncateIssue(issue))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "%d files checked, %d with issues, %d issues total\n",
		report.TotalFiles, report.FilesWithIssues(), report.TotalIssues())
	if report.Passed() {
		sb.WriteString("all checks passed\n")
	}

	return w.output.Write([]byte(sb.String()))
}
