package mdsource

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Index maps the content directory's metadata for the site walker:
// which permalink belongs to which markdown file, and which output stems
// are merely aliases of another page.
type Index struct {
	// PermalinkToPath maps a trimmed permalink to its markdown file path.
	PermalinkToPath map[string]string

	// Aliases holds every alias stem declared in front matter. HTML files
	// whose stem is an alias are generated redirects and are not checked.
	Aliases map[string]bool
}

// ScanContent walks the content directory and builds the index from every
// markdown file's front matter. Malformed front matter anywhere aborts the
// scan: an index built from partial metadata would misclassify pages.
func ScanContent(contentDir string) (*Index, error) {
	index := &Index{
		PermalinkToPath: make(map[string]string),
		Aliases:         make(map[string]bool),
	}

	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		src, err := LoadSource(path)
		if err != nil {
			return fmt.Errorf("scan content: %w", err)
		}

		if permalink := trimPermalink(src.FrontMatter.Permalink); permalink != "" {
			index.PermalinkToPath[permalink] = path
		}
		for _, alias := range src.FrontMatter.Aliases {
			if stem := trimPermalink(alias); stem != "" {
				index.Aliases[stem] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// Resolve returns the markdown path for an output file stem, or "" when no
// page claims that permalink.
func (i *Index) Resolve(stem string) string {
	return i.PermalinkToPath[trimPermalink(stem)]
}

// IsAlias reports whether the output stem is an alias of another page.
func (i *Index) IsAlias(stem string) bool {
	return i.Aliases[trimPermalink(stem)]
}

// trimPermalink strips the slashes front matter authors use inconsistently.
func trimPermalink(p string) string {
	return strings.Trim(strings.TrimSpace(p), "/")
}

// Stem returns the output file name without directory or extension.
func Stem(htmlPath string) string {
	base := filepath.Base(htmlPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
