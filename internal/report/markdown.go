package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/yashiro/sitecheck/internal/model"
)

// MarkdownWriter renders the report as Markdown, suitable for pasting into
// an issue or a CI job summary.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter for the given destination.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the report.
func (w *MarkdownWriter) Write(report *model.SiteReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("sitecheck report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", "`" + report.SiteDir + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Files checked", strconv.Itoa(report.TotalFiles)},
			{"Files with issues", strconv.Itoa(report.FilesWithIssues())},
			{"Total issues", strconv.Itoa(report.TotalIssues())},
		},
	})
	md.PlainText("")

	for _, f := range report.Files {
		if !f.HasIssues() {
			continue
		}
		md.H2(f.Path)
		var lines []string
		for _, r := range f.Results {
			if !r.Failed() {
				continue
			}
			if r.IsFlag {
				lines = append(lines, "`"+r.Key+"`")
				continue
			}
			for _, issue := range r.Issues {
				lines = append(lines, "`"+r.Key+"` "+model.TruncateIssue(issue))
			}
		}
		md.BulletList(lines...)
		md.PlainText("")
	}

	if len(report.GlobalIssues) > 0 {
		md.H2("Site-level issues")
		md.BulletList(report.GlobalIssues...)
		md.PlainText("")
	}

	if report.Passed() {
		md.PlainText("All checks passed.")
	}

	return len(md.String()), md.Build()
}
