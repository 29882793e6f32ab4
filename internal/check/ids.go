package check

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/yashiro/sitecheck/internal/htmldoc"
)

// flowchartClass marks rendered diagram containers, whose generated ids
// legitimately repeat between diagrams.
const flowchartClass = "flowchart"

// numberedIDSuffix matches the "-N" suffix the generator appends on id
// collisions.
var numberedIDSuffix = regexp.MustCompile(`^(.+)-\d+$`)

// DuplicateIDCheck flags ids used more than once. A bare id plus its
// numbered "-N" variants is reported as one logical duplicate with a
// combined count.
type DuplicateIDCheck struct{}

// NewDuplicateIDCheck creates a DuplicateIDCheck.
func NewDuplicateIDCheck() *DuplicateIDCheck {
	return &DuplicateIDCheck{}
}

// Name returns the check key.
func (*DuplicateIDCheck) Name() string {
	return NameDuplicateIDs
}

// Run counts id usage across the document.
func (*DuplicateIDCheck) Run(_ context.Context, c *Context) []string {
	counts := make(map[string]int)
	var order []string

	var visit func(n *html.Node, inFlowchart bool)
	visit = func(n *html.Node, inFlowchart bool) {
		if n.Type == html.ElementNode {
			if htmldoc.HasClass(n, flowchartClass) {
				inFlowchart = true
			}
			if id := htmldoc.Attr(n, "id"); id != "" && !inFlowchart && !strings.Contains(id, "fnref") {
				if counts[id] == 0 {
					order = append(order, id)
				}
				counts[id]++
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child, inFlowchart)
		}
	}
	visit(c.Doc.Root(), false)

	return reportDuplicates(counts, order)
}

// reportDuplicates merges numbered variants into their base id and emits
// one issue per logical duplicate.
func reportDuplicates(counts map[string]int, order []string) []string {
	consumed := make(map[string]bool)
	var issues []string

	for _, id := range order {
		if consumed[id] {
			continue
		}

		// Numbered variants are handled when their base id is visited;
		// a variant whose base never appears stands on its own.
		if m := numberedIDSuffix.FindStringSubmatch(id); m != nil && counts[m[1]] > 0 {
			continue
		}

		total := counts[id]
		hasVariants := false
		for other, n := range counts {
			if other == id {
				continue
			}
			if m := numberedIDSuffix.FindStringSubmatch(other); m != nil && m[1] == id {
				total += n
				hasVariants = true
				consumed[other] = true
			}
		}

		switch {
		case hasVariants:
			issues = append(issues, fmt.Sprintf("%s (found %d times, including numbered variants)", id, total))
		case total > 1:
			issues = append(issues, fmt.Sprintf("%s (found %d times)", id, total))
		}
	}
	return issues
}
