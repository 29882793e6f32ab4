package check

import (
	"context"
	"strings"
	"testing"

	"github.com/yashiro/sitecheck/internal/mdsource"
	"github.com/yashiro/sitecheck/internal/model"
)

// sourceWith builds a markdown source with the given front matter fields.
func sourceWith(title, description string) *mdsource.Source {
	return &mdsource.Source{
		FrontMatter: &model.FrontMatter{Title: title, Description: description},
	}
}

// TestMetadataCheck tests front matter versus rendered metadata.
func TestMetadataCheck(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		html   string
		source *mdsource.Source
		want   []string
	}{
		{
			name: "matching metadata",
			html: `<head><title>My Page</title>
				<meta name="description" content="About stuff">
				<meta property="og:title" content="My Page">
				<meta property="og:description" content="About stuff"></head>`,
			source: sourceWith("My Page", "About stuff"),
			want:   nil,
		},
		{
			name: "entities and smart quotes normalize equal",
			html: `<head><title>Test &amp; “Title”</title></head>`,
			source: sourceWith(`Test & "Title"`, ""),
			want:   nil,
		},
		{
			name:   "title mismatch",
			html:   `<head><title>Wrong</title></head>`,
			source: sourceWith("Right", ""),
			want:   []string{"title: wrong != right", "og:title: None != right"},
		},
		{
			name:   "absent tag compares as None",
			html:   `<head></head>`,
			source: sourceWith("", "Some description"),
			want: []string{
				"description: None != some description",
				"og:description: None != some description",
			},
		},
		{
			name:   "no source means no-op",
			html:   `<head><title>Anything</title></head>`,
			source: nil,
			want:   nil,
		},
		{
			name:   "empty front matter fields skipped",
			html:   `<head></head>`,
			source: sourceWith("", ""),
			want:   nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestContext(t, tc.html)
			c.Source = tc.source
			got := NewMetadataCheck().Run(context.Background(), c)
			assertIssues(t, got, tc.want)
		})
	}
}

// TestDescriptionLengthCheck tests the length boundaries in characters.
func TestDescriptionLengthCheck(t *testing.T) {
	t.Parallel()

	page := func(desc string) string {
		return `<head><meta name="description" content="` + desc + `"></head>`
	}

	testCases := []struct {
		name string
		html string
		want []string
	}{
		{
			name: "missing description",
			html: `<head></head>`,
			want: []string{"description missing"},
		},
		{
			name: "nine characters too short",
			html: page(strings.Repeat("a", 9)),
			want: []string{"description too short (9 characters, min 10)"},
		},
		{
			name: "ten characters is the minimum",
			html: page(strings.Repeat("a", 10)),
			want: nil,
		},
		{
			name: "155 characters is the maximum",
			html: page(strings.Repeat("a", 155)),
			want: nil,
		},
		{
			name: "156 characters too long",
			html: page(strings.Repeat("a", 156)),
			want: []string{"description too long (156 characters, max 155)"},
		},
		{
			name: "multibyte counted as characters",
			html: page(strings.Repeat("é", 12)),
			want: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestContext(t, tc.html)
			got := NewDescriptionLengthCheck().Run(context.Background(), c)
			assertIssues(t, got, tc.want)
		})
	}
}
