package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/yashiro/sitecheck/internal/check"
	"github.com/yashiro/sitecheck/internal/config"
	"github.com/yashiro/sitecheck/internal/htmldoc"
)

// cleanPage is a minimal page that passes the default battery.
const cleanPage = `<html><head>
<title>A Fine Page</title>
<meta name="description" content="A perfectly reasonable description of this page.">
<style id="critical-css">body{margin:0}</style>
<link rel="icon" href="/favicon.svg">
</head><body><p>Hello there.</p></body></html>`

// mustParse parses a page or fails the test.
func mustParse(t *testing.T, content string) *htmldoc.Document {
	t.Helper()

	doc, err := htmldoc.ParseString(content)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

// TestCheckFile tests battery execution and report assembly.
func TestCheckFile(t *testing.T) {
	t.Parallel()

	t.Run("clean page passes every check", func(t *testing.T) {
		t.Parallel()

		r := New(config.NewConfig())
		report, citations, err := r.CheckFile(context.Background(), Input{
			Doc:     mustParse(t, cleanPage),
			RelPath: "index.html",
		})
		if err != nil {
			t.Fatalf("CheckFile() error = %v", err)
		}
		if report.HasIssues() {
			t.Errorf("clean page reported issues: %+v", report.Results)
		}
		if len(citations) != 0 {
			t.Errorf("unexpected citations: %v", citations)
		}
	})

	t.Run("results follow registry order", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		r := New(cfg)
		report, _, err := r.CheckFile(context.Background(), Input{
			Doc:     mustParse(t, cleanPage),
			RelPath: "index.html",
		})
		if err != nil {
			t.Fatalf("CheckFile() error = %v", err)
		}

		battery := check.Registry(cfg)
		if len(report.Results) != len(battery) {
			t.Fatalf("got %d results, want %d", len(report.Results), len(battery))
		}
		for i, c := range battery {
			if report.Results[i].Key != c.Name() {
				t.Errorf("result %d = %s, want %s", i, report.Results[i].Key, c.Name())
			}
		}
	})

	t.Run("missing favicon sets the flag when enabled", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>No Icon Here Now</title>
			<meta name="description" content="A page without any favicon reference.">
			<style id="critical-css">b{}</style></head><body><p>x</p></body></html>`
		cfg := config.NewConfig()
		cfg.CheckFavicons = true
		r := New(cfg)
		report, _, err := r.CheckFile(context.Background(), Input{
			Doc:     mustParse(t, page),
			RelPath: "index.html",
		})
		if err != nil {
			t.Fatalf("CheckFile() error = %v", err)
		}

		last := report.Results[len(report.Results)-1]
		if last.Key != check.NameMissingFavicon || !last.IsFlag {
			t.Fatalf("last result = %+v, want missing_favicon flag", last)
		}
		if !last.Flag {
			t.Error("missing favicon not flagged")
		}
	})

	t.Run("favicon flag absent by default", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>No Icon Here Now</title>
			<meta name="description" content="A page without any favicon reference.">
			<style id="critical-css">b{}</style></head><body><p>x</p></body></html>`
		r := New(config.NewConfig())
		report, _, err := r.CheckFile(context.Background(), Input{
			Doc:     mustParse(t, page),
			RelPath: "index.html",
		})
		if err != nil {
			t.Fatalf("CheckFile() error = %v", err)
		}
		if report.HasIssues() {
			t.Errorf("page failed without the favicon toggle: %+v", report.Results)
		}
		for _, res := range report.Results {
			if res.Key == check.NameMissingFavicon {
				t.Error("favicon flag recorded without the toggle")
			}
		}
	})

	t.Run("skip list excludes the favicon flag", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>No Icon Here Now</title>
			<meta name="description" content="A page without any favicon reference.">
			<style id="critical-css">b{}</style></head><body><p>x</p></body></html>`
		cfg := config.NewConfig()
		cfg.CheckFavicons = true
		cfg.SkipChecks = []string{check.NameMissingFavicon}
		r := New(cfg)
		report, _, err := r.CheckFile(context.Background(), Input{
			Doc:     mustParse(t, page),
			RelPath: "index.html",
		})
		if err != nil {
			t.Fatalf("CheckFile() error = %v", err)
		}
		if report.HasIssues() {
			t.Errorf("skipped favicon flag still recorded: %+v", report.Results)
		}
	})

	t.Run("issues are collected under their check key", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>Broken Anchors Live Here</title>
			<meta name="description" content="This page has one dead same-page anchor.">
			<style id="critical-css">b{}</style>
			<link rel="icon" href="/favicon.svg"></head>
			<body><p>see <a href="#ghost" class="internal same-page-link">this</a></p></body></html>`
		r := New(config.NewConfig())
		report, _, err := r.CheckFile(context.Background(), Input{
			Doc:     mustParse(t, page),
			RelPath: "post.html",
		})
		if err != nil {
			t.Fatalf("CheckFile() error = %v", err)
		}

		found := false
		for _, res := range report.Results {
			if res.Key == check.NameInvalidAnchors {
				found = len(res.Issues) == 1 && res.Issues[0] == "invalid anchor: #ghost"
			}
		}
		if !found {
			t.Errorf("anchor issue not recorded: %+v", report.Results)
		}
	})

	t.Run("citations returned for the index", func(t *testing.T) {
		t.Parallel()

		page := `<html><head><title>A Cited Article Here</title>
			<meta name="description" content="An article that cites one source.">
			<style id="critical-css">b{}</style>
			<link rel="icon" href="/favicon.svg"></head>
			<body><pre>@misc{doe2024, title={X}}</pre></body></html>`
		r := New(config.NewConfig())
		_, citations, err := r.CheckFile(context.Background(), Input{
			Doc:     mustParse(t, page),
			RelPath: "post.html",
		})
		if err != nil {
			t.Fatalf("CheckFile() error = %v", err)
		}
		if len(citations) != 1 || citations[0] != "doe2024" {
			t.Errorf("citations = %v, want [doe2024]", citations)
		}
	})

	t.Run("cancelled context stops the run", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r := New(config.NewConfig())
		_, _, err := r.CheckFile(ctx, Input{
			Doc:     mustParse(t, cleanPage),
			RelPath: "index.html",
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}
