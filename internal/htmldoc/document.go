package htmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document loading errors.
var (
	// ErrSkipRedirect is returned by Load for client-side redirect pages
	// (a meta refresh tag in the head). Redirect pages carry no content
	// worth checking and are skipped by the walker.
	ErrSkipRedirect = errors.New("redirect page, skipping checks")

	// ErrNotUTF8 is returned when the file is not valid UTF-8.
	// The site generator only emits UTF-8; anything else means the file
	// was corrupted or is not generator output.
	ErrNotUTF8 = errors.New("file is not valid UTF-8")
)

// Document is one parsed HTML file.
// The underlying tree is shared, not copied; callers must treat it as
// immutable.
type Document struct {
	// path is the absolute path the document was loaded from.
	// Empty for documents parsed from strings in tests.
	path string

	// raw is the original file content, kept for byte-offset checks
	// (head placement budget).
	raw []byte

	// root is the parsed tree root.
	root *html.Node

	// query wraps the tree for selector-based traversal.
	query *goquery.Document
}

// Load reads and parses an HTML file.
// It returns ErrSkipRedirect for meta-refresh pages and ErrNotUTF8 for
// files that are not valid UTF-8.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // Paths come from the site walk
	if err != nil {
		return nil, err
	}

	doc, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.path = path
	return doc, nil
}

// ParseString parses HTML from a string. Used by tests and by the
// cross-page anchor check, which parses target pages on demand.
func ParseString(content string) (*Document, error) {
	return parse([]byte(content))
}

// parse builds a Document from raw bytes.
func parse(raw []byte) (*Document, error) {
	if !utf8.Valid(raw) {
		return nil, ErrNotUTF8
	}

	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	doc := &Document{
		raw:   raw,
		root:  root,
		query: goquery.NewDocumentFromNode(root),
	}

	if doc.isRedirect() {
		return nil, ErrSkipRedirect
	}
	return doc, nil
}

// isRedirect reports whether the document is a client-side redirect page.
func (d *Document) isRedirect() bool {
	redirect := false
	d.query.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		equiv, _ := s.Attr("http-equiv")
		content, _ := s.Attr("content")
		if strings.EqualFold(equiv, "refresh") && strings.Contains(strings.ToLower(content), "url=") {
			redirect = true
			return false
		}
		return true
	})
	return redirect
}

// Path returns the path the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// Raw returns the original file bytes.
func (d *Document) Raw() []byte {
	return d.raw
}

// Root returns the tree root for direct node traversal.
func (d *Document) Root() *html.Node {
	return d.root
}

// Find runs a CSS selector query against the tree.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.query.Find(selector)
}

// Snapshot renders the tree to bytes. x/net/html preserves attribute order
// from parsing and renders deterministically, so an unchanged tree always
// yields identical bytes. The runner compares snapshots taken before and
// after the checks to detect a check mutating the tree.
func (d *Document) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return nil, fmt.Errorf("render snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// HasID reports whether any element in the document carries the given id
// or (for legacy anchors) name attribute.
func (d *Document) HasID(id string) bool {
	found := false
	walk(d.root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		for _, attr := range n.Attr {
			if (attr.Key == "id" || attr.Key == "name") && attr.Val == id {
				found = true
			}
		}
	})
	return found
}

// walk visits every node in depth-first order.
func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// Walk visits every node of the document in depth-first order.
func (d *Document) Walk(visit func(*html.Node)) {
	walk(d.root, visit)
}

// textSkippedTags are elements whose text never counts as page prose.
var textSkippedTags = map[string]bool{
	"code":   true,
	"pre":    true,
	"script": true,
	"style":  true,
}

// TextOutsideCode returns the concatenated text of n's subtree, excluding
// anything inside code, pre, script, and style elements. Canary-phrase
// checks use this so that literal markdown examples in code blocks are
// never flagged.
func TextOutsideCode(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && textSkippedTags[n.Data] {
			return
		}
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

// Attr returns the value of the named attribute, or "" when absent.
func Attr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasClass reports whether the node's class attribute contains the given
// class name.
func HasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(Attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
