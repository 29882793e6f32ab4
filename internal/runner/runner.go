package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yashiro/sitecheck/internal/check"
	"github.com/yashiro/sitecheck/internal/config"
	"github.com/yashiro/sitecheck/internal/htmldoc"
	"github.com/yashiro/sitecheck/internal/mdsource"
	"github.com/yashiro/sitecheck/internal/model"
)

// ErrTreeMutated is returned when a check modifies the parsed tree.
// Checks are read-only by contract; a mutation would let one check change
// what every later check sees, so the whole run aborts.
var ErrTreeMutated = errors.New("check mutated the document tree")

// Runner executes the configured check battery against one file at a time.
type Runner struct {
	// cfg holds limits and toggles shared by all checks.
	cfg *config.Config

	// checks is the ordered battery built once per run.
	checks []check.Check

	// flagFavicon records the missing-favicon flag per file. Derived from
	// the config toggle and the skip list, like the conditional checks.
	flagFavicon bool

	// httpClient is shared across files so iframe probes reuse
	// connections.
	httpClient *http.Client

	// logger receives per-check debug output.
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithHTTPClient sets the client used for iframe reachability probes.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Runner) {
		r.httpClient = client
	}
}

// New creates a Runner with the battery derived from the configuration.
func New(cfg *config.Config, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	r := &Runner{
		cfg:         cfg,
		checks:      check.Registry(cfg),
		flagFavicon: cfg.CheckFavicons && !cfg.SkipSet()[check.NameMissingFavicon],
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: cfg.IframeTimeout}
	}
	return r
}

// Input bundles everything known about one file before checking.
type Input struct {
	// Doc is the parsed document.
	Doc *htmldoc.Document

	// FilePath is the absolute path of the HTML file.
	FilePath string

	// RelPath is the path relative to the site root, used in reports.
	RelPath string

	// SiteRoot is the generator output directory.
	SiteRoot string

	// Source is the resolved markdown source, nil for pages without one.
	Source *mdsource.Source

	// CSSVars holds the custom property names from the site CSS bundle.
	CSSVars map[string]bool
}

// CheckFile runs the full battery against one document and returns the
// per-file report plus the citation keys found on the page.
func (r *Runner) CheckFile(ctx context.Context, in Input) (*model.FileReport, []string, error) {
	cctx := &check.Context{
		Doc:        in.Doc,
		FilePath:   in.FilePath,
		RelPath:    in.RelPath,
		SiteRoot:   in.SiteRoot,
		Source:     in.Source,
		CSSVars:    in.CSSVars,
		Config:     r.cfg,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	}

	before, err := in.Doc.Snapshot()
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot %s: %w", in.RelPath, err)
	}

	report := model.NewFileReport(in.RelPath)
	for _, c := range r.checks {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		start := time.Now()
		issues := c.Run(ctx, cctx)
		report.Add(c.Name(), issues)
		r.logger.Debug("check finished",
			slog.String("file", in.RelPath),
			slog.String("check", c.Name()),
			slog.Int("issues", len(issues)),
			slog.Duration("elapsed", time.Since(start)))

		after, err := in.Doc.Snapshot()
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot %s: %w", in.RelPath, err)
		}
		if !bytes.Equal(before, after) {
			return nil, nil, fmt.Errorf("%s in %s: %w", c.Name(), in.RelPath, ErrTreeMutated)
		}
	}

	if r.flagFavicon {
		report.SetFlag(check.NameMissingFavicon, !check.FaviconPresent(cctx))
	}

	return report, check.ExtractCitationKeys(in.Doc), nil
}
