package check

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/yashiro/sitecheck/internal/htmldoc"
)

// inlineSpacingTags are the elements whose boundaries against literal text
// are checked. Formatter-injected abbr and ordinal spans count too; they
// render as inline text.
var inlineSpacingTags = map[string]bool{
	"a": true, "em": true, "strong": true, "i": true, "b": true, "del": true,
	"abbr": true,
}

// ordinalSuffixClass marks spans the formatter injects for 1st/2nd/3rd.
const ordinalSuffixClass = "ordinal-suffix"

// Characters allowed to sit directly against an inline element, checked
// independently per side. The lists are house style and intentionally
// exact.
const (
	allowedBefore = "([{\"'‘“„«‹/–—-$£€~*_=…"
	allowedAfter  = ".,;:!?)]}\"'’”»›/–—-…%⁠"
)

// juxtaposition is an exact preceding-text/element-text pair that is known
// good and exempt from the spacing rule.
type juxtaposition struct {
	before, inner string
}

// spacingWhitelist pins compound words that intentionally straddle an
// emphasis boundary.
var spacingWhitelist = map[juxtaposition]bool{
	{"Some", "one"}:   true,
	{"some", "one"}:   true,
	{"Some", "thing"}: true,
	{"some", "thing"}: true,
	{"Any", "one"}:    true,
	{"any", "one"}:    true,
	{"every", "one"}:  true,
}

// SpacingCheck verifies that inline elements are separated from adjacent
// literal text by whitespace, punctuation, or a whitelisted juxtaposition.
type SpacingCheck struct{}

// NewSpacingCheck creates a SpacingCheck.
func NewSpacingCheck() *SpacingCheck {
	return &SpacingCheck{}
}

// Name returns the check key.
func (*SpacingCheck) Name() string {
	return NameInlineSpacing
}

// Run walks the tree looking at every inline element's text neighbors.
func (*SpacingCheck) Run(_ context.Context, c *Context) []string {
	var issues []string

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "code", "pre", "script", "style":
				return
			}
			if isInlineSpacingElement(n) {
				issues = append(issues, checkInlineBoundaries(n)...)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(c.Doc.Root())

	return issues
}

// isInlineSpacingElement reports whether the node is subject to the
// spacing rule.
func isInlineSpacingElement(n *html.Node) bool {
	if inlineSpacingTags[n.Data] {
		return true
	}
	return n.Data == "span" && htmldoc.HasClass(n, ordinalSuffixClass)
}

// checkInlineBoundaries inspects the literal text directly before and
// after one inline element.
func checkInlineBoundaries(n *html.Node) []string {
	inner := textContent(n)
	var issues []string

	// Ordinal suffixes glue directly to their number; only the trailing
	// boundary is checked.
	ordinal := n.Data == "span" && htmldoc.HasClass(n, ordinalSuffixClass)

	if prev := n.PrevSibling; !ordinal && prev != nil && prev.Type == html.TextNode && prev.Data != "" {
		last, _ := utf8.DecodeLastRuneInString(prev.Data)
		if needsSpace(last, allowedBefore) && !whitelistedBefore(prev.Data, inner) {
			issues = append(issues, fmt.Sprintf("missing space before <%s>: %q", n.Data, boundaryExcerpt(prev.Data, inner, true)))
		}
	}

	if next := n.NextSibling; next != nil && next.Type == html.TextNode && next.Data != "" {
		first, _ := utf8.DecodeRuneInString(next.Data)
		if needsSpace(first, allowedAfter) {
			issues = append(issues, fmt.Sprintf("missing space after <%s>: %q", n.Data, boundaryExcerpt(next.Data, inner, false)))
		}
	}
	return issues
}

// needsSpace reports whether a boundary rune violates the rule for its
// side.
func needsSpace(r rune, allowed string) bool {
	if r == utf8.RuneError {
		return false
	}
	return !unicode.IsSpace(r) && !strings.ContainsRune(allowed, r)
}

// whitelistedBefore checks the exact-juxtaposition whitelist against the
// word ending the preceding text and the element's own text.
func whitelistedBefore(before, inner string) bool {
	return spacingWhitelist[juxtaposition{lastWord(before), inner}]
}

// lastWord returns the trailing word of a text fragment.
func lastWord(text string) string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// boundaryExcerpt builds a short issue excerpt showing the offending
// boundary.
func boundaryExcerpt(neighbor, inner string, before bool) string {
	if before {
		if len(neighbor) > excerptContext {
			neighbor = neighbor[len(neighbor)-excerptContext:]
			for len(neighbor) > 0 && !isRuneStart(neighbor[0]) {
				neighbor = neighbor[1:]
			}
		}
		return neighbor + "[" + inner + "]"
	}
	if len(neighbor) > excerptContext {
		neighbor = neighbor[:excerptContext]
		for len(neighbor) > 0 && !isRuneStart(neighbor[len(neighbor)-1]) {
			neighbor = neighbor[:len(neighbor)-1]
		}
	}
	return "[" + inner + "]" + neighbor
}
