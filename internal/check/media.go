package check

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// mediaSelector matches every element that references a media file.
const mediaSelector = "img[src], video[src], svg[src], source[src], audio[src]"

// isRemoteRef reports whether a media reference points off-disk.
func isRemoteRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "//") ||
		strings.HasPrefix(ref, "data:")
}

// stripRefSuffix removes query string and fragment from a reference.
func stripRefSuffix(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		return ref[:i]
	}
	return ref
}

// MediaFilesCheck verifies that every local media reference resolves to an
// existing file, relative to the site root or to the referencing page.
type MediaFilesCheck struct{}

// NewMediaFilesCheck creates a MediaFilesCheck.
func NewMediaFilesCheck() *MediaFilesCheck {
	return &MediaFilesCheck{}
}

// Name returns the check key.
func (*MediaFilesCheck) Name() string {
	return NameMissingMediaFiles
}

// Run resolves each local media reference on disk.
func (*MediaFilesCheck) Run(_ context.Context, c *Context) []string {
	if c.SiteRoot == "" {
		return nil
	}

	var issues []string
	seen := make(map[string]bool)
	c.Doc.Find(mediaSelector).Each(func(_ int, s *goquery.Selection) {
		ref, _ := s.Attr("src")
		if ref == "" || isRemoteRef(ref) || seen[ref] {
			return
		}
		seen[ref] = true

		if !mediaFileExists(c, stripRefSuffix(ref)) {
			issues = append(issues, fmt.Sprintf("missing media file: %s", ref))
		}
	})
	return issues
}

// mediaFileExists resolves a local reference against the site root (for
// root-relative paths) or the referencing file's directory.
func mediaFileExists(c *Context, ref string) bool {
	var path string
	if strings.HasPrefix(ref, "/") {
		path = filepath.Join(c.SiteRoot, ref)
	} else {
		path = filepath.Join(filepath.Dir(c.FilePath), ref)
	}
	_, err := os.Stat(path)
	return err == nil
}

// ImgDimensionsCheck requires explicit width and height on every <img> so
// the browser can reserve layout space before the image loads.
type ImgDimensionsCheck struct{}

// NewImgDimensionsCheck creates an ImgDimensionsCheck.
func NewImgDimensionsCheck() *ImgDimensionsCheck {
	return &ImgDimensionsCheck{}
}

// Name returns the check key.
func (*ImgDimensionsCheck) Name() string {
	return NameImgDimensions
}

// Run checks width/height attributes on every image.
func (*ImgDimensionsCheck) Run(_ context.Context, c *Context) []string {
	var issues []string
	c.Doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		_, hasWidth := s.Attr("width")
		_, hasHeight := s.Attr("height")
		if hasWidth && hasHeight {
			return
		}
		src, _ := s.Attr("src")
		issues = append(issues, fmt.Sprintf("img missing explicit dimensions: %s", src))
	})
	return issues
}

// exemptVideoID is the one video allowed to deviate from the source-order
// rule; its autoplaying header animation ships GIF-style without a WEBM
// variant.
const exemptVideoID = "pond-video"

// VideoSourceCheck enforces the source layout of every <video>: an MP4
// source first, a WEBM source second, matching type strings, and an
// identical base path between the two.
type VideoSourceCheck struct{}

// NewVideoSourceCheck creates a VideoSourceCheck.
func NewVideoSourceCheck() *VideoSourceCheck {
	return &VideoSourceCheck{}
}

// Name returns the check key.
func (*VideoSourceCheck) Name() string {
	return NameVideoSources
}

// Run validates source order, types, extensions, and base paths.
func (*VideoSourceCheck) Run(_ context.Context, c *Context) []string {
	var issues []string
	c.Doc.Find("video").Each(func(_ int, s *goquery.Selection) {
		if id, _ := s.Attr("id"); id == exemptVideoID {
			return
		}
		issues = append(issues, checkVideoSources(s)...)
	})
	return issues
}

// videoSourceRules is the required (type prefix, extension) per position.
var videoSourceRules = []struct {
	position  int
	typeWant  string
	extension string
}{
	{1, "video/mp4", ".mp4"},
	{2, "video/webm", ".webm"},
}

// checkVideoSources validates one video element's <source> children.
func checkVideoSources(video *goquery.Selection) []string {
	sources := video.Find("source")
	if sources.Length() != 2 {
		return []string{fmt.Sprintf("video must have exactly 2 sources (mp4 then webm), found %d", sources.Length())}
	}

	var issues []string
	basePaths := make([]string, 2)
	sources.Each(func(i int, s *goquery.Selection) {
		rule := videoSourceRules[i]
		typeAttr, _ := s.Attr("type")
		src, _ := s.Attr("src")

		if !strings.HasPrefix(typeAttr, rule.typeWant) {
			issues = append(issues, fmt.Sprintf("video source %d has type %q, want %s", rule.position, typeAttr, rule.typeWant))
		}
		cleaned := stripRefSuffix(src)
		if !strings.HasSuffix(cleaned, rule.extension) {
			issues = append(issues, fmt.Sprintf("video source %d has extension %q, want %s", rule.position, filepath.Ext(cleaned), rule.extension))
		}
		basePaths[i] = strings.TrimSuffix(cleaned, filepath.Ext(cleaned))
	})

	if basePaths[0] != basePaths[1] {
		issues = append(issues, fmt.Sprintf("video source base paths mismatch: %q vs %q", basePaths[0], basePaths[1]))
	}
	return issues
}

// AssetHostCheck restricts absolute media URLs to the approved CDN host.
// Anything else is flagged regardless of reachability: an asset outside
// the CDN bypasses the site's caching and purge pipeline.
type AssetHostCheck struct{}

// NewAssetHostCheck creates an AssetHostCheck.
func NewAssetHostCheck() *AssetHostCheck {
	return &AssetHostCheck{}
}

// Name returns the check key.
func (*AssetHostCheck) Name() string {
	return NameAssetHosts
}

// Run checks the host of every absolute media URL.
func (*AssetHostCheck) Run(_ context.Context, c *Context) []string {
	var issues []string
	c.Doc.Find(mediaSelector).Each(func(_ int, s *goquery.Selection) {
		ref, _ := s.Attr("src")
		if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
			return
		}
		u, err := url.Parse(ref)
		if err != nil {
			issues = append(issues, fmt.Sprintf("malformed asset URL: %s", ref))
			return
		}
		if u.Host != c.Config.AllowedAssetHost {
			issues = append(issues, fmt.Sprintf("asset from unapproved host %q: %s", u.Host, ref))
		}
	})
	return issues
}
