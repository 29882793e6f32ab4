package check

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/yashiro/sitecheck/internal/htmldoc"
)

// literalClosingTag matches rendered closing-tag text, which inside KaTeX
// output means a formula's HTML escaped incorrectly.
var literalClosingTag = regexp.MustCompile(`</[a-z][a-z0-9]*>`)

// KatexCheck validates rendered math: no error spans, no paragraph that is
// nothing but a lone formula, no display math that swallowed a blockquote
// marker, and no literal tag text inside KaTeX output.
type KatexCheck struct{}

// NewKatexCheck creates a KatexCheck.
func NewKatexCheck() *KatexCheck {
	return &KatexCheck{}
}

// Name returns the check key.
func (*KatexCheck) Name() string {
	return NameKatex
}

// Run applies all KaTeX sanity rules.
func (*KatexCheck) Run(_ context.Context, c *Context) []string {
	var issues []string

	c.Doc.Find(".katex-error").Each(func(_ int, s *goquery.Selection) {
		issues = append(issues, fmt.Sprintf("katex rendering error: %q", strings.TrimSpace(s.Text())))
	})

	c.Doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if isLoneKatexParagraph(s) {
			issues = append(issues, "paragraph contains only a lone katex span; use display math instead")
		}
	})

	c.Doc.Find(".katex-display").Each(func(_ int, s *goquery.Selection) {
		if strings.HasPrefix(strings.TrimSpace(s.Text()), ">") {
			issues = append(issues, "display math starts with >; should be inside a blockquote")
		}
	})

	c.Doc.Find(".katex").Each(func(_ int, s *goquery.Selection) {
		if match := literalClosingTag.FindString(s.Text()); match != "" {
			issues = append(issues, fmt.Sprintf("literal tag text inside katex output: %q", match))
		}
	})

	return issues
}

// isLoneKatexParagraph reports whether a paragraph's only non-whitespace
// content is a single span.katex child.
func isLoneKatexParagraph(p *goquery.Selection) bool {
	if len(p.Nodes) == 0 {
		return false
	}

	katexSpans := 0
	for n := p.Nodes[0].FirstChild; n != nil; n = n.NextSibling {
		switch n.Type {
		case html.TextNode:
			if strings.TrimSpace(n.Data) != "" {
				return false
			}
		case html.ElementNode:
			if n.Data == "span" && hasKatexClass(n) {
				katexSpans++
				continue
			}
			return false
		}
	}
	return katexSpans == 1
}

// hasKatexClass reports whether the node carries the katex class but not
// katex-display (display math is fine on its own).
func hasKatexClass(n *html.Node) bool {
	classes := strings.Fields(htmldoc.Attr(n, "class"))
	hasKatex := false
	for _, class := range classes {
		if class == "katex-display" {
			return false
		}
		if class == "katex" {
			hasKatex = true
		}
	}
	return hasKatex
}
