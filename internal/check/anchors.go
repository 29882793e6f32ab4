package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yashiro/sitecheck/internal/htmldoc"
)

// requiredSamePageClasses must be present on every same-page anchor so the
// client-side router and popover styling treat it correctly.
var requiredSamePageClasses = []string{"internal", "same-page-link"}

// skipLinkClass marks the accessibility skip link, which is exempt from
// the class requirement.
const skipLinkClass = "skip-link"

// crossPageHref matches hrefs of the form "/page#id" or "./page#id".
var crossPageHref = regexp.MustCompile(`^(\.?/[^#]*)#(.+)$`)

// AnchorCheck validates same-page and cross-page anchor links: the target
// id must exist in the referenced document, and same-page links must carry
// the required classes.
type AnchorCheck struct{}

// NewAnchorCheck creates an AnchorCheck.
func NewAnchorCheck() *AnchorCheck {
	return &AnchorCheck{}
}

// Name returns the check key.
func (*AnchorCheck) Name() string {
	return NameInvalidAnchors
}

// Run checks every anchor href in the document.
func (*AnchorCheck) Run(_ context.Context, c *Context) []string {
	var issues []string

	// Cross-page targets are parsed once per run, not once per link.
	targets := make(map[string]*htmldoc.Document)

	c.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		switch {
		case strings.HasPrefix(href, "#"):
			issues = append(issues, checkSamePageAnchor(c, s, href)...)
		case crossPageHref.MatchString(href):
			issues = append(issues, checkCrossPageAnchor(c, href, targets)...)
		}
	})
	return issues
}

// checkSamePageAnchor verifies the target id exists and the link carries
// the required classes.
func checkSamePageAnchor(c *Context, s *goquery.Selection, href string) []string {
	var issues []string

	id := strings.TrimPrefix(href, "#")
	if id != "" && !c.Doc.HasID(id) {
		issues = append(issues, fmt.Sprintf("invalid anchor: %s", href))
	}

	if s.HasClass(skipLinkClass) {
		return issues
	}
	var missing []string
	for _, class := range requiredSamePageClasses {
		if !s.HasClass(class) {
			missing = append(missing, class)
		}
	}
	if len(missing) > 0 {
		issues = append(issues, fmt.Sprintf("anchor %s missing classes: %s", href, strings.Join(missing, ", ")))
	}
	return issues
}

// checkCrossPageAnchor resolves "/page#id" against the site root and
// verifies the id exists in the target page. A missing file and a missing
// id are reported identically: either way the link is dead.
func checkCrossPageAnchor(c *Context, href string, targets map[string]*htmldoc.Document) []string {
	if c.SiteRoot == "" {
		return nil
	}

	match := crossPageHref.FindStringSubmatch(href)
	page, id := match[1], match[2]

	target, ok := targets[page]
	if !ok {
		target = loadAnchorTarget(c.SiteRoot, page)
		targets[page] = target
	}
	if target == nil || !target.HasID(id) {
		return []string{fmt.Sprintf("invalid anchor: %s", href)}
	}
	return nil
}

// loadAnchorTarget parses the page a cross-page anchor points at.
// Returns nil when the file is missing or unparsable. Redirect targets are
// treated as dead: the id cannot exist on a page with no content.
func loadAnchorTarget(siteRoot, page string) *htmldoc.Document {
	rel := strings.TrimPrefix(strings.TrimPrefix(page, "./"), "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		rel += "index"
	}
	if filepath.Ext(rel) == "" {
		rel += ".html"
	}

	path := filepath.Join(siteRoot, rel)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	doc, err := htmldoc.Load(path)
	if err != nil {
		if errors.Is(err, htmldoc.ErrSkipRedirect) {
			return nil
		}
		return nil
	}
	return doc
}
