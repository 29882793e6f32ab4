package check

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yashiro/sitecheck/internal/htmldoc"
)

// canaryPattern is one regex that catches markdown or templating syntax
// which escaped rendering. The patterns are house style and intentionally
// exact; tests pin their output strings.
type canaryPattern struct {
	desc string
	re   *regexp.Regexp
}

// canaryPatterns is the closed catalog of unrendered-artifact patterns,
// applied to block-level text outside code regions.
var canaryPatterns = []canaryPattern{
	{"callout syntax", regexp.MustCompile(`>\s*\[![a-zA-Z]+\]`)},
	{"checkbox", regexp.MustCompile(`\[ \]`)},
	{"footnote marker", regexp.MustCompile(`\[\^[^\]\s]+\]`)},
	{"caption prefix", regexp.MustCompile(`\b(?:Table|Figure|Code|Caption): `)},
	{"leaked tag text", regexp.MustCompile(`</?[a-z][a-z0-9]*>`)},
	{"straight double quote", regexp.MustCompile(`"`)},
	{"straight single quote", regexp.MustCompile(`'`)},
	{"dash sequence", regexp.MustCompile(`-{2,}`)},
}

// leadingPatterns only count at the start of a text fragment, where block
// markers would sit had they not been rendered.
var leadingPatterns = []canaryPattern{
	{"heading marker", regexp.MustCompile(`^#{1,6} `)},
	{"description list marker", regexp.MustCompile(`^: `)},
}

// Emphasis leftovers. A paired run of asterisks or underscores in prose
// means emphasis markers were not rendered. Underscores followed by a
// percentage (statistic names like _95%) and fragments opening with an
// asterisk (shared-authorship notes) are exempt.
var (
	emphasisAsterisk   = regexp.MustCompile(`\*\S[^*]*\*`)
	emphasisUnderscore = regexp.MustCompile(`(?:^|\s)_\S[^_]*_`)
	percentUnderscore  = regexp.MustCompile(`_\d+(?:\.\d+)?%`)
)

// blockSelector lists the elements whose text is checked. Blockquotes are
// covered through their paragraph children.
const blockSelector = "p, li, dt, dd, figcaption, h1, h2, h3, h4, h5, h6"

// ArtifactCheck flags markdown and templating syntax that leaked into the
// rendered page.
type ArtifactCheck struct{}

// NewArtifactCheck creates an ArtifactCheck.
func NewArtifactCheck() *ArtifactCheck {
	return &ArtifactCheck{}
}

// Name returns the check key.
func (*ArtifactCheck) Name() string {
	return NameUnrenderedArtifacts
}

// Run scans block-level text for canary patterns.
func (*ArtifactCheck) Run(_ context.Context, c *Context) []string {
	var issues []string
	c.Doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		// An outer block's text already contains its nested blocks; a
		// <p> inside an <li> would otherwise be scanned twice.
		if s.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		text := htmldoc.TextOutsideCode(s.Nodes[0])
		issues = append(issues, scanText(text)...)
	})
	return issues
}

// scanText applies the canary catalog to one block's text.
func scanText(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var issues []string
	for _, p := range canaryPatterns {
		if match := p.re.FindString(text); match != "" {
			issues = append(issues, fmt.Sprintf("unrendered %s: %q", p.desc, excerpt(text, match)))
		}
	}
	for _, p := range leadingPatterns {
		if match := p.re.FindString(trimmed); match != "" {
			issues = append(issues, fmt.Sprintf("unrendered %s: %q", p.desc, excerpt(trimmed, match)))
		}
	}
	issues = append(issues, scanEmphasis(trimmed)...)
	return issues
}

// scanEmphasis flags leftover emphasis markers, honoring the exemptions.
func scanEmphasis(text string) []string {
	var issues []string

	// A fragment opening with an asterisk is a shared-authorship note.
	if !strings.HasPrefix(text, "*") {
		if match := emphasisAsterisk.FindString(text); match != "" {
			issues = append(issues, fmt.Sprintf("unrendered emphasis: %q", excerpt(text, match)))
		}
	}

	if match := emphasisUnderscore.FindString(text); match != "" {
		if !percentUnderscore.MatchString(match) {
			issues = append(issues, fmt.Sprintf("unrendered emphasis: %q", excerpt(text, strings.TrimSpace(match))))
		}
	}
	return issues
}

// excerptContext is how many characters around a match appear in issues.
const excerptContext = 20

// excerpt returns the match with a little surrounding context so the
// issue is findable on the page.
func excerpt(text, match string) string {
	idx := strings.Index(text, match)
	if idx < 0 {
		return match
	}
	start := idx - excerptContext
	if start < 0 {
		start = 0
	}
	end := idx + len(match) + excerptContext
	if end > len(text) {
		end = len(text)
	}
	// Snap to rune boundaries; offsets were computed in bytes.
	for start > 0 && !isRuneStart(text[start]) {
		start--
	}
	for end < len(text) && !isRuneStart(text[end]) {
		end++
	}
	return strings.TrimSpace(text[start:end])
}

// isRuneStart reports whether b is the first byte of a UTF-8 rune.
func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
