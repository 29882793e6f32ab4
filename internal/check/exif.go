package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	exif "github.com/dsoprea/go-exif/v3"
)

// exifImagePattern matches the raster formats that can carry EXIF data.
// PNG, GIF, and AVIF either cannot or are stripped by the asset pipeline.
var exifImagePattern = regexp.MustCompile(`(?i)\.(jpe?g|tiff?|heic)$`)

// gpsTags are the EXIF tags whose presence leaks the capture location.
var gpsTags = map[string]bool{
	"GPSLatitude":     true,
	"GPSLongitude":    true,
	"GPSLatitudeRef":  true,
	"GPSLongitudeRef": true,
	"GPSAltitude":     true,
	"GPSTimeStamp":    true,
}

// EXIFCheck scans local raster images referenced by the page for GPS
// metadata. Photos published with embedded coordinates reveal where they
// were taken.
type EXIFCheck struct{}

// NewEXIFCheck creates an EXIFCheck.
func NewEXIFCheck() *EXIFCheck {
	return &EXIFCheck{}
}

// Name returns the check key.
func (*EXIFCheck) Name() string {
	return NameEXIFMetadata
}

// Run inspects every local EXIF-capable image once.
func (*EXIFCheck) Run(_ context.Context, c *Context) []string {
	if c.SiteRoot == "" {
		return nil
	}

	var issues []string
	seen := make(map[string]bool)
	c.Doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		ref, _ := s.Attr("src")
		if ref == "" || isRemoteRef(ref) || seen[ref] {
			return
		}
		seen[ref] = true

		cleaned := stripRefSuffix(ref)
		if !exifImagePattern.MatchString(cleaned) {
			return
		}
		issues = append(issues, checkImageEXIF(c, ref, cleaned)...)
	})
	return issues
}

// checkImageEXIF reads one image from disk and reports any GPS tags.
// A file that does not exist is the media-files check's finding, not ours.
func checkImageEXIF(c *Context, ref, cleaned string) []string {
	var path string
	if strings.HasPrefix(cleaned, "/") {
		path = filepath.Join(c.SiteRoot, cleaned)
	} else {
		path = filepath.Join(filepath.Dir(c.FilePath), cleaned)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	var issues []string
	for _, entry := range entries {
		if gpsTags[entry.TagName] {
			issues = append(issues, fmt.Sprintf("image %s carries GPS EXIF tag %s", ref, entry.TagName))
		}
	}
	return issues
}
