package check

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/yashiro/sitecheck/internal/htmldoc"
)

// citationKeyPattern matches the opening of a BibTeX @misc entry inside
// rendered code blocks.
var citationKeyPattern = regexp.MustCompile(`@misc\{([^,\s]+),`)

// ExtractCitationKeys collects the BibTeX citation keys appearing in a
// page's code and pre blocks. Keys are returned in document order with
// duplicates preserved; the cross-file index deduplicates per file.
func ExtractCitationKeys(doc *htmldoc.Document) []string {
	var keys []string
	doc.Find("pre, code").Each(func(_ int, s *goquery.Selection) {
		// A code element inside pre is already covered by its parent.
		if len(s.Nodes) > 0 && s.Nodes[0].Data == "code" && s.Closest("pre").Length() > 0 {
			return
		}
		for _, m := range citationKeyPattern.FindAllStringSubmatch(s.Text(), -1) {
			keys = append(keys, m[1])
		}
	})
	return keys
}
