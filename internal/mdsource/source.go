package mdsource

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yashiro/sitecheck/internal/model"
)

// Source is one markdown source file, parsed and ready for cross-checks
// against its rendered HTML.
type Source struct {
	// Path is the markdown file path.
	Path string

	// FrontMatter is the parsed YAML header.
	FrontMatter *model.FrontMatter

	// Body is the markdown content after the front matter.
	Body string

	// AssetCounts maps normalized asset paths to the number of times the
	// markdown references them outside code and math regions.
	AssetCounts map[string]int
}

// mathRegions matches display and inline math. Asset-looking strings inside
// math (e.g. subscripted underscores) must not count as references.
var mathRegions = regexp.MustCompile(`(?s)\$\$.*?\$\$|\$[^$\n]+\$`)

// htmlSrcAttr extracts src/href attribute values from raw HTML embedded in
// markdown.
var htmlSrcAttr = regexp.MustCompile(`(?i)(?:src|href)\s*=\s*["']([^"']+)["']`)

// assetExtensions are the media file extensions counted as asset
// references. Plain page links are handled by the anchor checks instead.
var assetExtensions = map[string]bool{
	".avif": true, ".gif": true, ".ico": true, ".jpeg": true, ".jpg": true,
	".mp3": true, ".mp4": true, ".png": true, ".svg": true, ".wav": true,
	".webm": true, ".webp": true,
}

// LoadSource reads and parses one markdown file.
// Malformed front matter is returned as an error: metadata the checks
// cannot read is a structural failure, not a soft issue.
func LoadSource(path string) (*Source, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // Paths come from the content scan
	if err != nil {
		return nil, err
	}

	fm, body, err := model.ParseFrontMatter(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Source{
		Path:        path,
		FrontMatter: fm,
		Body:        body,
		AssetCounts: CountAssetRefs(body),
	}, nil
}

// CountAssetRefs counts media references in markdown, keyed by normalized
// path. Code blocks, inline code, and math regions are excluded so that
// documentation about assets does not count as a reference to them.
func CountAssetRefs(body string) map[string]int {
	body = mathRegions.ReplaceAllString(body, "")

	counts := make(map[string]int)
	record := func(ref string) {
		norm := NormalizeAssetPath(ref)
		if norm == "" || !isAssetPath(norm) {
			return
		}
		counts[norm]++
	}

	md := goldmark.New()
	source := []byte(body)
	root := md.Parser().Parse(text.NewReader(source))

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.CodeSpan:
			return ast.WalkSkipChildren, nil
		case *ast.Image:
			record(string(node.Destination))
		case *ast.HTMLBlock:
			for i := 0; i < node.Lines().Len(); i++ {
				line := node.Lines().At(i)
				recordHTMLRefs(string(line.Value(source)), record)
			}
		case *ast.RawHTML:
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				recordHTMLRefs(string(seg.Value(source)), record)
			}
		}
		return ast.WalkContinue, nil
	})

	return counts
}

// recordHTMLRefs extracts src/href values from a raw HTML fragment.
func recordHTMLRefs(fragment string, record func(string)) {
	for _, match := range htmlSrcAttr.FindAllStringSubmatch(fragment, -1) {
		record(match[1])
	}
}

// isAssetPath reports whether a normalized reference points at a media
// file rather than another page.
func isAssetPath(ref string) bool {
	dot := strings.LastIndexByte(ref, '.')
	if dot < 0 {
		return false
	}
	return assetExtensions[strings.ToLower(ref[dot:])]
}
