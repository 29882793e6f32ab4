package walker

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/yashiro/sitecheck/internal/model"
)

// rootArtifacts must exist at the site root itself. A copy elsewhere in
// the tree does not count: crawlers and browsers only look at the root.
var rootArtifacts = []string{"robots.txt", "favicon.svg", "favicon.ico"}

// feedFile is the RSS feed the generator emits.
const feedFile = "rss.xml"

// cssCustomProperty matches custom property definitions in a stylesheet.
var cssCustomProperty = regexp.MustCompile(`(--[a-zA-Z0-9-]+)\s*:`)

// checkRootArtifacts verifies the fixed root files exist.
func checkRootArtifacts(siteDir string, report *model.SiteReport) {
	for _, name := range rootArtifacts {
		if _, err := os.Stat(filepath.Join(siteDir, name)); err != nil {
			report.AddGlobalIssue("missing root artifact: %s", name)
		}
	}
}

// checkFeed parses the RSS feed and verifies the fields readers rely on.
func checkFeed(siteDir string, report *model.SiteReport) {
	data, err := os.ReadFile(filepath.Join(siteDir, feedFile))
	if err != nil {
		report.AddGlobalIssue("missing root artifact: %s", feedFile)
		return
	}

	feed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		report.AddGlobalIssue("%s does not parse: %v", feedFile, err)
		return
	}

	if feed.Title == "" {
		report.AddGlobalIssue("%s: feed has no title", feedFile)
	}
	if feed.Link == "" {
		report.AddGlobalIssue("%s: feed has no link", feedFile)
	}
	if feed.Description == "" {
		report.AddGlobalIssue("%s: feed has no description", feedFile)
	}
	if len(feed.Items) == 0 {
		report.AddGlobalIssue("%s: feed has no items", feedFile)
	}
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			report.AddGlobalIssue("%s: item missing title or link: %q", feedFile, item.Title)
		}
	}
}

// scanCSSBundle reads every stylesheet under the site directory, harvests
// the custom property names for the favicon mask check, and verifies the
// bundle carries an @supports rule (the Firefox drop-cap fallback).
func scanCSSBundle(siteDir string) (map[string]bool, []string) {
	vars := make(map[string]bool)
	var found, hasSupports bool

	_ = filepath.WalkDir(siteDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".css") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		found = true

		for _, m := range cssCustomProperty.FindAllStringSubmatch(string(data), -1) {
			vars[m[1]] = true
		}
		if strings.Contains(string(data), "@supports") {
			hasSupports = true
		}
		return nil
	})

	var issues []string
	switch {
	case !found:
		issues = append(issues, "no CSS bundle found under site directory")
	case !hasSupports:
		issues = append(issues, "CSS bundle has no @supports rule")
	}
	return vars, issues
}
