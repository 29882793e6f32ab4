package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/yashiro/sitecheck/internal/config"
	"github.com/yashiro/sitecheck/internal/htmldoc"
	"github.com/yashiro/sitecheck/internal/mdsource"
	"github.com/yashiro/sitecheck/internal/model"
	"github.com/yashiro/sitecheck/internal/runner"
)

// ErrMissingSource is returned when a checked page has no markdown source.
// Metadata and asset-parity checks are meaningless without one, so a page
// that should have a source but does not is a build failure, not a soft
// issue.
var ErrMissingSource = errors.New("no markdown source for page")

// draftsSegment marks output that is never published.
const draftsSegment = "drafts"

// systemPages are output stems generated without a markdown source.
var systemPages = map[string]bool{
	"404": true,
}

// Walker runs the full site validation: per-file checks, the cross-file
// citation index, and the site-level artifact checks.
type Walker struct {
	cfg    *config.Config
	runner *runner.Runner
	logger *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// WithRunner sets a custom per-file runner.
func WithRunner(r *runner.Runner) Option {
	return func(w *Walker) {
		w.runner = r
	}
}

// New creates a Walker for the given configuration.
func New(cfg *config.Config, opts ...Option) *Walker {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	w := &Walker{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.runner == nil {
		w.runner = runner.New(cfg, runner.WithLogger(w.logger))
	}
	return w
}

// Walk checks every HTML file under the site directory and returns the
// aggregated report. Structural failures (unreadable files, missing
// markdown sources, a mutated tree) abort the walk with an error; content
// problems are collected as issues.
func (w *Walker) Walk(ctx context.Context) (*model.SiteReport, error) {
	index, err := mdsource.ScanContent(w.cfg.ContentDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", w.cfg.ContentDir, err)
	}

	report := model.NewSiteReport(w.cfg.SiteDir)
	cssVars, cssIssues := scanCSSBundle(w.cfg.SiteDir)
	citations := model.NewCitationIndex()

	err = filepath.WalkDir(w.cfg.SiteDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(w.cfg.SiteDir, path)
		if err != nil {
			return err
		}
		if skipPath(rel, index) {
			w.logger.Debug("skipping file", slog.String("file", rel))
			return nil
		}

		fileReport, keys, err := w.checkFile(ctx, path, rel, index, cssVars)
		if err != nil {
			return err
		}
		if fileReport == nil {
			return nil // redirect page
		}

		report.AddFile(fileReport)
		citations.Record(rel, keys)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, issue := range cssIssues {
		report.AddGlobalIssue("%s", issue)
	}
	checkRootArtifacts(w.cfg.SiteDir, report)
	checkFeed(w.cfg.SiteDir, report)
	for _, issue := range citations.Finalize() {
		report.AddGlobalIssue("%s", issue)
	}

	w.logger.Info("walk finished",
		slog.Int("files", report.TotalFiles),
		slog.Int("issues", report.TotalIssues()))
	return report, nil
}

// skipPath reports whether an output file is exempt from checking:
// anything under a drafts directory, and alias redirects.
func skipPath(rel string, index *mdsource.Index) bool {
	for _, segment := range strings.Split(filepath.ToSlash(rel), "/") {
		if segment == draftsSegment {
			return true
		}
	}
	return index.IsAlias(mdsource.Stem(rel))
}

// checkFile loads, resolves, and checks one page. A nil report with nil
// error means the page is a redirect and was skipped.
func (w *Walker) checkFile(ctx context.Context, path, rel string, index *mdsource.Index, cssVars map[string]bool) (*model.FileReport, []string, error) {
	doc, err := htmldoc.Load(path)
	if err != nil {
		if errors.Is(err, htmldoc.ErrSkipRedirect) {
			w.logger.Debug("redirect page", slog.String("file", rel))
			return nil, nil, nil
		}
		return nil, nil, err
	}

	source, err := w.resolveSource(rel, index)
	if err != nil {
		return nil, nil, err
	}

	return w.runner.CheckFile(ctx, runner.Input{
		Doc:      doc,
		FilePath: path,
		RelPath:  rel,
		SiteRoot: w.cfg.SiteDir,
		Source:   source,
		CSSVars:  cssVars,
	})
}

// resolveSource finds the markdown source for an output file via the
// permalink index. Only pages directly at the site root must have one:
// a root page without a source is fatal unless it is a known system
// page. Subdirectory output (tag and listing pages the generator emits
// without front matter) gets a nil source and the source-free subset of
// checks.
func (w *Walker) resolveSource(rel string, index *mdsource.Index) (*mdsource.Source, error) {
	stem := mdsource.Stem(rel)

	srcPath := index.Resolve(strings.TrimSuffix(filepath.ToSlash(rel), ".html"))
	if srcPath == "" {
		srcPath = index.Resolve(stem)
	}
	if srcPath == "" {
		if rootLevel(rel) && !systemPages[stem] {
			return nil, fmt.Errorf("%s: %w", rel, ErrMissingSource)
		}
		return nil, nil
	}

	source, err := mdsource.LoadSource(srcPath)
	if err != nil {
		return nil, fmt.Errorf("load source for %s: %w", rel, err)
	}
	return source, nil
}

// rootLevel reports whether the output file sits directly at the site
// root.
func rootLevel(rel string) bool {
	return !strings.Contains(filepath.ToSlash(rel), "/")
}
