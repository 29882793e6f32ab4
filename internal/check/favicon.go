package check

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// WordJoiner is the zero-width character that keeps a favicon glued to the
// preceding word across line breaks.
const WordJoiner = "⁠"

// Favicon markup classes.
const (
	faviconClass       = "favicon"
	faviconSpanClass   = "favicon-span"
	noMaskClass        = "no-mask"
	noFaviconSpanClass = "no-favicon-span"
)

// maskURLProperty extracts the url of the --mask-url style property.
var maskURLProperty = regexp.MustCompile(`--mask-url:\s*url\((?:"([^"]*)"|'([^']*)'|([^)]*))\)`)

// cssVarRef matches var(--name) references in inline styles.
var cssVarRef = regexp.MustCompile(`var\(\s*(--[a-zA-Z0-9-]+)`)

// FaviconCheck enforces the favicon markup shape: an inline svg with a
// masking style, wrapped alone in its span, preceded by a word-joiner.
type FaviconCheck struct{}

// NewFaviconCheck creates a FaviconCheck.
func NewFaviconCheck() *FaviconCheck {
	return &FaviconCheck{}
}

// Name returns the check key.
func (*FaviconCheck) Name() string {
	return NameFaviconShape
}

// Run validates every favicon occurrence in the document body.
func (*FaviconCheck) Run(_ context.Context, c *Context) []string {
	var issues []string

	c.Doc.Find("img." + faviconClass).Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		issues = append(issues, fmt.Sprintf("favicon must be an inline svg, not img: %s", src))
	})

	c.Doc.Find("svg." + faviconClass).Each(func(_ int, s *goquery.Selection) {
		issues = append(issues, checkFaviconSVG(c, s)...)
	})

	return issues
}

// checkFaviconSVG validates one svg.favicon element.
func checkFaviconSVG(c *Context, svg *goquery.Selection) []string {
	var issues []string

	if !svg.HasClass(noMaskClass) {
		issues = append(issues, checkMaskStyle(c, svg)...)
	}

	parent := svg.Parent()
	if !parent.HasClass(faviconSpanClass) || parent.Children().Length() != 1 {
		issues = append(issues, "favicon must be the sole child of a span."+faviconSpanClass)
		return issues
	}

	if !insideNoFaviconSpan(parent) && !precededByWordJoiner(parent) {
		issues = append(issues, "favicon span not preceded by a word-joiner span")
	}
	return issues
}

// checkMaskStyle validates the --mask-url inline style of a favicon.
func checkMaskStyle(c *Context, svg *goquery.Selection) []string {
	style, _ := svg.Attr("style")
	match := maskURLProperty.FindStringSubmatch(style)
	if match == nil {
		return []string{"favicon missing --mask-url style property"}
	}

	maskURL := match[1] + match[2] + match[3]
	var issues []string
	if !strings.HasSuffix(stripRefSuffix(maskURL), ".svg") {
		issues = append(issues, fmt.Sprintf("favicon mask url must point at an .svg file: %s", maskURL))
	}

	// Inline styles may reference bundle-defined custom properties; an
	// undefined one silently renders no mask at all.
	if c.CSSVars != nil {
		for _, ref := range cssVarRef.FindAllStringSubmatch(style, -1) {
			if !c.CSSVars[ref[1]] {
				issues = append(issues, fmt.Sprintf("favicon style references undefined CSS property %s", ref[1]))
			}
		}
	}
	return issues
}

// insideNoFaviconSpan reports whether an ancestor opts out of the
// word-joiner requirement.
func insideNoFaviconSpan(s *goquery.Selection) bool {
	return s.Closest("."+noFaviconSpanClass).Length() > 0
}

// precededByWordJoiner reports whether the element's immediately preceding
// sibling is a span containing the word-joiner character.
func precededByWordJoiner(s *goquery.Selection) bool {
	if len(s.Nodes) == 0 {
		return false
	}
	prev := s.Nodes[0].PrevSibling
	// Skip pure-whitespace text between the spans; the generator may
	// break lines there.
	for prev != nil && prev.Type == html.TextNode && strings.TrimSpace(prev.Data) == "" {
		prev = prev.PrevSibling
	}
	if prev == nil || prev.Type != html.ElementNode || prev.Data != "span" {
		return false
	}
	return strings.Contains(textContent(prev), WordJoiner)
}

// textContent returns the concatenated text of a node's subtree.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

// FaviconPresent reports whether the page head references the site
// favicon. Used by the runner as a boolean flag check.
func FaviconPresent(c *Context) bool {
	return c.Doc.Find(`head link[rel="icon"], head link[rel="shortcut icon"]`).Length() > 0
}
