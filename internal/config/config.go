package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultSiteDir is the generator's output directory.
	DefaultSiteDir = "./public"

	// DefaultContentDir holds the markdown sources the output was
	// rendered from.
	DefaultContentDir = "./content"

	// DefaultAllowedAssetHost is the only host absolute media URLs may
	// point at. Everything else is flagged regardless of reachability,
	// because an asset outside the CDN will not survive a cache purge.
	DefaultAllowedAssetHost = "assets.turntrout.com"

	// DescriptionMinLength and DescriptionMaxLength bound the meta
	// description. 155 is the practical search-snippet cutoff; below 10
	// characters the description carries no information.
	DescriptionMinLength = 10
	DescriptionMaxLength = 155

	// HeadBudgetBytes is how far into the byte stream <meta> and <title>
	// tags may appear. Crawlers only guarantee parsing the first chunk of
	// a page, so late metadata is effectively invisible to them.
	HeadBudgetBytes = 9 * 1024

	// DefaultIframeTimeout bounds each iframe HEAD request. Reachability
	// is best-effort; a slow embed host should not stall the whole walk.
	DefaultIframeTimeout = 10 * time.Second

	// DefaultIframeConcurrency limits concurrent HEAD requests within a
	// single file's iframe check.
	DefaultIframeConcurrency = 4

	// MinCommitCount is the smallest plausible value for the commit-count
	// placeholder. A smaller number means the populate script ran against
	// a shallow clone.
	MinCommitCount = 5000

	// AppName is used for XDG directory paths.
	AppName = "sitecheck"
)

// Config holds all options for a sitecheck run. It is populated from CLI
// flags (plus the optional .sitecheck file) and passed down explicitly;
// there is no global state.
type Config struct {
	// SiteDir is the generated output directory to validate.
	SiteDir string

	// ContentDir is the markdown source directory.
	ContentDir string

	// CheckFonts includes the font-preload check in the battery.
	CheckFonts bool

	// CheckFavicons records a missing-favicon flag for pages that never
	// reference the site favicon.
	CheckFavicons bool

	// CheckIframes enables network reachability checks for iframe srcs.
	// Off by default: CI runs without network access should still pass.
	CheckIframes bool

	// AllowedAssetHost is the approved CDN host for absolute media URLs.
	AllowedAssetHost string

	// IframeTimeout bounds each iframe HEAD request.
	IframeTimeout time.Duration

	// IframeConcurrency limits concurrent HEAD requests per file.
	IframeConcurrency int

	// SkipChecks lists check names to exclude from the battery.
	SkipChecks []string

	// JSONOutput and MarkdownOutput select the report format.
	// At most one may be set; both false means plain text.
	JSONOutput     bool
	MarkdownOutput bool

	// OutputPath writes the report to a file in addition to stdout.
	OutputPath string

	// SaveHistory records the run in the history database.
	SaveHistory bool

	// HistoryDir is the directory holding the history database.
	HistoryDir string

	// Verbose enables slog.LevelDebug output.
	Verbose bool
}

// NewConfig returns a Config with all defaults applied.
func NewConfig() *Config {
	return &Config{
		SiteDir:           DefaultSiteDir,
		ContentDir:        DefaultContentDir,
		AllowedAssetHost:  DefaultAllowedAssetHost,
		IframeTimeout:     DefaultIframeTimeout,
		IframeConcurrency: DefaultIframeConcurrency,
		HistoryDir:        DefaultHistoryDir(),
	}
}

// DefaultHistoryDir returns the XDG data directory for the history
// database.
func DefaultHistoryDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration for contradictions.
func (c *Config) Validate() error {
	if c.SiteDir == "" {
		return ErrNoSiteDir
	}
	if c.ContentDir == "" {
		return ErrNoContentDir
	}
	if c.JSONOutput && c.MarkdownOutput {
		return ErrConflictingReportFormats
	}
	if c.IframeTimeout <= 0 {
		return ErrInvalidIframeTimeout
	}
	if c.IframeConcurrency <= 0 {
		return ErrInvalidIframeConcurrency
	}
	return nil
}

// SkipSet returns the skipped check names as a set.
func (c *Config) SkipSet() map[string]bool {
	set := make(map[string]bool, len(c.SkipChecks))
	for _, name := range c.SkipChecks {
		set[name] = true
	}
	return set
}
