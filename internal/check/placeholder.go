package check

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yashiro/sitecheck/internal/config"
)

// populatePrefix marks elements that a post-build script fills in.
// An empty one means the script did not run.
const populatePrefix = "populate-"

// commitCountID is the placeholder holding the repository commit count.
const commitCountID = "populate-commit-count"

// selfContainedMedia are elements that make a populate placeholder
// non-empty even without text.
var selfContainedMedia = map[string]bool{
	"img": true, "svg": true, "video": true, "audio": true, "iframe": true,
	"object": true, "embed": true, "canvas": true, "picture": true,
}

// PlaceholderCheck verifies every populate-* element was actually
// populated: it must contain non-whitespace text or a self-contained media
// element, and the commit-count placeholder must hold a plausible number.
type PlaceholderCheck struct{}

// NewPlaceholderCheck creates a PlaceholderCheck.
func NewPlaceholderCheck() *PlaceholderCheck {
	return &PlaceholderCheck{}
}

// Name returns the check key.
func (*PlaceholderCheck) Name() string {
	return NamePlaceholders
}

// Run inspects every populate-* element.
func (*PlaceholderCheck) Run(_ context.Context, c *Context) []string {
	var issues []string
	c.Doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		label, ok := populateLabel(s)
		if !ok {
			return
		}

		text := strings.TrimSpace(s.Text())
		if text == "" && !containsMedia(s) {
			issues = append(issues, fmt.Sprintf("placeholder %s was not populated", label))
			return
		}

		if label == commitCountID {
			issues = append(issues, checkCommitCount(text)...)
		}
	})
	return issues
}

// populateLabel returns the populate-* id or class of an element, if any.
func populateLabel(s *goquery.Selection) (string, bool) {
	if id, _ := s.Attr("id"); strings.HasPrefix(id, populatePrefix) {
		return id, true
	}
	for _, class := range strings.Fields(s.AttrOr("class", "")) {
		if strings.HasPrefix(class, populatePrefix) {
			return class, true
		}
	}
	return "", false
}

// containsMedia reports whether the element holds a self-contained media
// child.
func containsMedia(s *goquery.Selection) bool {
	found := false
	s.Find("*").EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if len(child.Nodes) > 0 && selfContainedMedia[child.Nodes[0].Data] {
			found = true
			return false
		}
		return true
	})
	return found
}

// checkCommitCount validates the commit-count placeholder's value.
// Thousands separators are tolerated; the populate script formats the
// number for display.
func checkCommitCount(text string) []string {
	cleaned := strings.ReplaceAll(text, ",", "")
	count, err := strconv.Atoi(cleaned)
	if err != nil {
		return []string{fmt.Sprintf("commit count %q is not a number", text)}
	}
	if count < config.MinCommitCount {
		return []string{fmt.Sprintf("commit count %d is below the minimum %d", count, config.MinCommitCount)}
	}
	return nil
}
