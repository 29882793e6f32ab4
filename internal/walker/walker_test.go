package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yashiro/sitecheck/internal/config"
)

// validFeed is a minimal RSS document with every required field.
const validFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>The Pond</title>
<link>https://example.com</link>
<description>Writing about things</description>
<item><title>First Post</title><link>https://example.com/first-post</link></item>
</channel></rss>`

// goodPage builds an output page whose metadata matches its source.
const goodPage = `<html><head>
<title>First Post</title>
<meta name="description" content="A description that is long enough to pass.">
<meta property="og:title" content="First Post">
<meta property="og:description" content="A description that is long enough to pass.">
<style id="critical-css">body{margin:0}</style>
<link rel="icon" href="/favicon.svg">
</head><body><p>Hello there.</p></body></html>`

// goodSource is the matching markdown source.
const goodSource = `---
title: First Post
description: A description that is long enough to pass.
permalink: /first-post
---

Hello there.
`

// newSite lays out a complete minimal site and returns its config.
func newSite(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.NewConfig()
	cfg.SiteDir = filepath.Join(root, "public")
	cfg.ContentDir = filepath.Join(root, "content")

	writeFile(t, filepath.Join(cfg.ContentDir, "first-post.md"), goodSource)
	writeFile(t, filepath.Join(cfg.SiteDir, "first-post.html"), goodPage)
	writeFile(t, filepath.Join(cfg.SiteDir, "robots.txt"), "User-agent: *\n")
	writeFile(t, filepath.Join(cfg.SiteDir, "favicon.svg"), "<svg></svg>")
	writeFile(t, filepath.Join(cfg.SiteDir, "favicon.ico"), "icon")
	writeFile(t, filepath.Join(cfg.SiteDir, "rss.xml"), validFeed)
	writeFile(t, filepath.Join(cfg.SiteDir, "styles", "bundle.css"),
		"@supports (initial-letter: 2) { p::first-letter { initial-letter: 2 } }\n:root { --mask-url: none; }\n")
	return cfg
}

// writeFile writes a fixture, creating parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// TestWalk tests the full site walk on fixture trees.
func TestWalk(t *testing.T) {
	t.Parallel()

	t.Run("clean site passes", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		report, err := New(cfg).Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if !report.Passed() {
			t.Errorf("clean site failed: %d files with issues, global=%v",
				report.FilesWithIssues(), report.GlobalIssues)
		}
		if report.TotalFiles != 1 {
			t.Errorf("TotalFiles = %d, want 1", report.TotalFiles)
		}
	})

	t.Run("drafts are skipped", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		writeFile(t, filepath.Join(cfg.SiteDir, "drafts", "wip.html"),
			`<html><body><p>unfinished -- raw</p></body></html>`)
		report, err := New(cfg).Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if report.TotalFiles != 1 {
			t.Errorf("TotalFiles = %d, want 1 (draft not skipped)", report.TotalFiles)
		}
	})

	t.Run("alias stems are skipped", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		writeFile(t, filepath.Join(cfg.ContentDir, "aliased.md"), `---
title: Aliased Post
description: Another long enough description for the checks.
permalink: /aliased
aliases: /old-name
---
Body.
`)
		writeFile(t, filepath.Join(cfg.SiteDir, "aliased.html"), strings.ReplaceAll(
			strings.ReplaceAll(goodPage, "First Post", "Aliased Post"),
			"A description that is long enough to pass.",
			"Another long enough description for the checks."))
		writeFile(t, filepath.Join(cfg.SiteDir, "old-name.html"), `<html><body></body></html>`)

		report, err := New(cfg).Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if report.TotalFiles != 2 {
			t.Errorf("TotalFiles = %d, want 2 (alias not skipped)", report.TotalFiles)
		}
	})

	t.Run("redirect pages are skipped", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		writeFile(t, filepath.Join(cfg.SiteDir, "moved.html"),
			`<html><head><meta http-equiv="refresh" content="0; url=/first-post"></head></html>`)
		report, err := New(cfg).Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if report.TotalFiles != 1 {
			t.Errorf("TotalFiles = %d, want 1 (redirect not skipped)", report.TotalFiles)
		}
	})

	t.Run("page without source is fatal", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		writeFile(t, filepath.Join(cfg.SiteDir, "orphan.html"), goodPage)
		_, err := New(cfg).Walk(context.Background())
		if !errors.Is(err, ErrMissingSource) {
			t.Errorf("error = %v, want ErrMissingSource", err)
		}
	})

	t.Run("system pages need no source", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		writeFile(t, filepath.Join(cfg.SiteDir, "404.html"),
			`<html><head><title>Page Not Found</title>
			<meta name="description" content="This page does not exist, sorry about that.">
			<style id="critical-css">b{}</style>
			<link rel="icon" href="/favicon.svg"></head><body><p>Nothing here.</p></body></html>`)
		report, err := New(cfg).Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if report.TotalFiles != 2 {
			t.Errorf("TotalFiles = %d, want 2", report.TotalFiles)
		}
	})

	t.Run("subdirectory pages need no source", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		writeFile(t, filepath.Join(cfg.SiteDir, "tags", "recursion.html"),
			`<html><head><title>Posts About Recursion</title>
			<meta name="description" content="Every post filed under the recursion tag.">
			<style id="critical-css">b{}</style>
			<link rel="icon" href="/favicon.svg"></head><body><p>Two posts.</p></body></html>`)
		report, err := New(cfg).Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if report.TotalFiles != 2 {
			t.Errorf("TotalFiles = %d, want 2", report.TotalFiles)
		}
		if !report.Passed() {
			t.Errorf("listing page reported issues: %v", report.GlobalIssues)
		}
	})

	t.Run("missing root artifacts reported", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		if err := os.Remove(filepath.Join(cfg.SiteDir, "robots.txt")); err != nil {
			t.Fatal(err)
		}
		report, err := New(cfg).Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		assertGlobalIssue(t, report.GlobalIssues, "missing root artifact: robots.txt")
	})

	t.Run("css bundle without supports rule reported", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		writeFile(t, filepath.Join(cfg.SiteDir, "styles", "bundle.css"), ":root { --x: 1 }")
		report, err := New(cfg).Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		assertGlobalIssue(t, report.GlobalIssues, "CSS bundle has no @supports rule")
	})

	t.Run("invalid feed reported", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		writeFile(t, filepath.Join(cfg.SiteDir, "rss.xml"), "not xml at all")
		report, err := New(cfg).Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		assertGlobalIssue(t, report.GlobalIssues, "rss.xml does not parse")
	})

	t.Run("duplicate citation keys across files", func(t *testing.T) {
		t.Parallel()

		cfg := newSite(t)
		cited := strings.Replace(goodPage, "<p>Hello there.</p>",
			`<pre>@misc{shared2020, x}</pre>`, 1)
		writeFile(t, filepath.Join(cfg.SiteDir, "first-post.html"), cited)
		writeFile(t, filepath.Join(cfg.ContentDir, "second.md"), strings.ReplaceAll(
			goodSource, "first-post", "second"))
		writeFile(t, filepath.Join(cfg.SiteDir, "second.html"), cited)

		report, err := New(cfg).Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		assertGlobalIssue(t, report.GlobalIssues, `citation key "shared2020" referenced in 2 files`)
	})
}

// assertGlobalIssue checks one expected substring among global issues.
func assertGlobalIssue(t *testing.T, issues []string, substr string) {
	t.Helper()

	for _, issue := range issues {
		if strings.Contains(issue, substr) {
			return
		}
	}
	t.Errorf("no global issue contains %q in %v", substr, issues)
}
