package check

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/yashiro/sitecheck/internal/config"
)

// missingTagValue is what an absent HTML tag compares as. Keeping the
// literal in the issue string makes "tag missing entirely" unmistakable in
// the report.
const missingTagValue = "None"

// quoteFolder maps typographic characters to their ASCII equivalents so
// that markdown (straight quotes) and rendered HTML (smart quotes) compare
// equal.
var quoteFolder = strings.NewReplacer(
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	" ", " ",
)

// normalizeMeta prepares a metadata string for comparison: NFC, entity
// unescaping, quote folding, lowercasing, and whitespace collapsing.
func normalizeMeta(s string) string {
	s = norm.NFC.String(s)
	s = html.UnescapeString(s)
	s = quoteFolder.Replace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

// MetadataCheck cross-checks markdown front matter against the rendered
// page's <title> and meta tags. Each mismatching field is one issue.
type MetadataCheck struct{}

// NewMetadataCheck creates a MetadataCheck.
func NewMetadataCheck() *MetadataCheck {
	return &MetadataCheck{}
}

// Name returns the check key.
func (*MetadataCheck) Name() string {
	return NameMetadataMismatch
}

// Run compares title and description fields. No-ops without a markdown
// source.
func (*MetadataCheck) Run(_ context.Context, c *Context) []string {
	if c.Source == nil {
		return nil
	}
	fm := c.Source.FrontMatter

	fields := []struct {
		name    string
		want    string
		gotHTML func() (string, bool)
	}{
		{"title", fm.Title, func() (string, bool) {
			sel := c.Doc.Find("title")
			if sel.Length() == 0 {
				return "", false
			}
			return sel.First().Text(), true
		}},
		{"description", fm.Description, c.metaContent(`meta[name="description"]`)},
		{"og:title", fm.Title, c.metaContent(`meta[property="og:title"]`)},
		{"og:description", fm.Description, c.metaContent(`meta[property="og:description"]`)},
	}

	var issues []string
	for _, field := range fields {
		if field.want == "" {
			continue
		}
		got := missingTagValue
		if raw, ok := field.gotHTML(); ok {
			got = normalizeMeta(raw)
		}
		want := normalizeMeta(field.want)
		if got != want {
			issues = append(issues, fmt.Sprintf("%s: %s != %s", field.name, got, want))
		}
	}
	return issues
}

// metaContent returns a lookup for a meta tag's content attribute.
func (c *Context) metaContent(selector string) func() (string, bool) {
	return func() (string, bool) {
		sel := c.Doc.Find(selector)
		if sel.Length() == 0 {
			return "", false
		}
		return sel.First().AttrOr("content", ""), true
	}
}

// DescriptionLengthCheck requires a meta description between the
// configured bounds. Too short carries no information for the snippet;
// too long gets cut off mid-sentence by search engines.
type DescriptionLengthCheck struct{}

// NewDescriptionLengthCheck creates a DescriptionLengthCheck.
func NewDescriptionLengthCheck() *DescriptionLengthCheck {
	return &DescriptionLengthCheck{}
}

// Name returns the check key.
func (*DescriptionLengthCheck) Name() string {
	return NameDescriptionLength
}

// Run measures the meta description in characters, not bytes.
func (*DescriptionLengthCheck) Run(_ context.Context, c *Context) []string {
	sel := c.Doc.Find(`meta[name="description"]`)
	if sel.Length() == 0 {
		return []string{"description missing"}
	}

	content := sel.First().AttrOr("content", "")
	length := utf8.RuneCountInString(content)
	switch {
	case length < config.DescriptionMinLength:
		return []string{fmt.Sprintf("description too short (%d characters, min %d)", length, config.DescriptionMinLength)}
	case length > config.DescriptionMaxLength:
		return []string{fmt.Sprintf("description too long (%d characters, max %d)", length, config.DescriptionMaxLength)}
	default:
		return nil
	}
}
