package check

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yashiro/sitecheck/internal/config"
	"github.com/yashiro/sitecheck/internal/htmldoc"
	"github.com/yashiro/sitecheck/internal/mdsource"
)

// Check names. The name is the key under which a check's issues are
// grouped in the per-file report.
const (
	NameInvalidAnchors      = "invalid_anchors"
	NameUnrenderedArtifacts = "unrendered_artifacts"
	NameMissingMediaFiles   = "missing_media_files"
	NameImgDimensions       = "img_dimensions"
	NameVideoSources        = "video_sources"
	NameAssetHosts          = "unapproved_asset_hosts"
	NameAssetParity         = "missing_assets_in_html"
	NameMetadataMismatch    = "metadata_mismatch"
	NameDescriptionLength   = "description_length"
	NameFaviconShape        = "favicon_shape"
	NameDuplicateIDs        = "duplicate_ids"
	NamePlaceholders        = "empty_populate_elements"
	NameKatex               = "katex_issues"
	NameHeadPlacement       = "late_head_meta"
	NameInlineSpacing       = "inline_spacing"
	NameCriticalCSS         = "critical_css"
	NameEXIFMetadata        = "exif_metadata"
	NameIframes             = "unreachable_iframes"
	NameFontPreload         = "font_preload"
	NameMissingFavicon      = "missing_favicon"
)

// Check is one named predicate over a document.
type Check interface {
	// Name returns the check key used in reports.
	Name() string

	// Run inspects the document and returns one string per violation.
	// An empty or nil result means the document is clean.
	Run(ctx context.Context, c *Context) []string
}

// Context carries everything a check may inspect for one file. Most
// checks only touch Doc; the rest no-op when their auxiliary fields are
// unset.
type Context struct {
	// Doc is the parsed document. Read-only by contract.
	Doc *htmldoc.Document

	// FilePath is the absolute path of the HTML file.
	FilePath string

	// RelPath is the path relative to the site root, used in reports.
	RelPath string

	// SiteRoot is the generator output directory, for resolving
	// root-relative asset and anchor targets.
	SiteRoot string

	// Source is the markdown source of this page, nil when the page has
	// none (system pages, pages reached only in tests).
	Source *mdsource.Source

	// CSSVars holds the custom property names defined in the site CSS
	// bundle. Nil when the bundle was not scanned.
	CSSVars map[string]bool

	// Config supplies tunable limits and the asset host allow-list.
	Config *config.Config

	// HTTPClient performs the best-effort iframe reachability requests.
	HTTPClient *http.Client

	// Logger receives debug output. Never nil after NewContext.
	Logger *slog.Logger
}

// NewContext builds a Context with required fields and safe defaults.
func NewContext(doc *htmldoc.Document, cfg *config.Config) *Context {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Context{
		Doc:        doc,
		Config:     cfg,
		HTTPClient: &http.Client{Timeout: cfg.IframeTimeout},
		Logger:     slog.Default(),
	}
}

// Registry returns the ordered check battery for the given configuration.
// Conditional checks (fonts, iframes) are appended only when enabled, and
// anything in the skip list is filtered out. Order is fixed so reports
// and the history database stay comparable across runs.
func Registry(cfg *config.Config) []Check {
	checks := []Check{
		NewAnchorCheck(),
		NewArtifactCheck(),
		NewMediaFilesCheck(),
		NewImgDimensionsCheck(),
		NewVideoSourceCheck(),
		NewAssetHostCheck(),
		NewAssetParityCheck(),
		NewMetadataCheck(),
		NewDescriptionLengthCheck(),
		NewFaviconCheck(),
		NewDuplicateIDCheck(),
		NewPlaceholderCheck(),
		NewKatexCheck(),
		NewHeadPlacementCheck(),
		NewSpacingCheck(),
		NewCriticalCSSCheck(),
		NewEXIFCheck(),
	}
	if cfg.CheckIframes {
		checks = append(checks, NewIframeCheck())
	}
	if cfg.CheckFonts {
		checks = append(checks, NewFontPreloadCheck())
	}

	skip := cfg.SkipSet()
	if len(skip) == 0 {
		return checks
	}
	kept := make([]Check, 0, len(checks))
	for _, c := range checks {
		if !skip[c.Name()] {
			kept = append(kept, c)
		}
	}
	return kept
}
