package check

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// AssetParityCheck compares the asset references counted in the markdown
// source against occurrences in the rendered HTML. Fewer occurrences in
// the output means a transclusion was silently dropped.
type AssetParityCheck struct{}

// NewAssetParityCheck creates an AssetParityCheck.
func NewAssetParityCheck() *AssetParityCheck {
	return &AssetParityCheck{}
}

// Name returns the check key.
func (*AssetParityCheck) Name() string {
	return NameAssetParity
}

// Run counts each normalized source path in the raw HTML. Without a
// resolved markdown source there is nothing to compare.
func (*AssetParityCheck) Run(_ context.Context, c *Context) []string {
	if c.Source == nil {
		return nil
	}

	raw := string(c.Doc.Raw())

	paths := make([]string, 0, len(c.Source.AssetCounts))
	for path := range c.Source.AssetCounts {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var issues []string
	for _, path := range paths {
		want := c.Source.AssetCounts[path]
		got := strings.Count(raw, path)
		if got < want {
			issues = append(issues, fmt.Sprintf("asset %s referenced %d times in markdown but %d times in html", path, want, got))
		}
	}
	return issues
}
