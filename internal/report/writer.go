package report

import (
	"io"

	"github.com/yashiro/sitecheck/internal/model"
)

// Writer renders a site report to some destination.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(report *model.SiteReport) (int, error)
}

// MultiWriter fans a report out to several writers: typically the
// terminal plus a file. It is a separate type rather than io.MultiWriter
// because reports, not raw bytes, are what gets written.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every writer, stopping on the first error.
// Returns the total bytes written.
func (m *MultiWriter) Write(report *model.SiteReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the shared output destination.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter for the given destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
