package check

import (
	"context"
	"testing"
)

// TestArtifactCheck tests canary detection in block text.
func TestArtifactCheck(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		html      string
		wantCount int
		wantIn    string
	}{
		{
			name:      "clean paragraph",
			html:      `<body><p>Normal paragraph</p></body>`,
			wantCount: 0,
		},
		{
			name:      "caption prefix in prose",
			html:      `<body><p>Table: summary of results</p></body>`,
			wantCount: 1,
			wantIn:    "unrendered caption prefix",
		},
		{
			name:      "caption prefix inside code is exempt",
			html:      `<body><p><code>Table: summary</code></p></body>`,
			wantCount: 0,
		},
		{
			name:      "callout syntax",
			html:      `<body><p>&gt; [!note] remember this</p></body>`,
			wantCount: 1,
			wantIn:    "unrendered callout syntax",
		},
		{
			name:      "unchecked checkbox",
			html:      `<body><li>[ ] buy milk</li></body>`,
			wantCount: 1,
			wantIn:    "unrendered checkbox",
		},
		{
			name:      "footnote marker",
			html:      `<body><p>as shown[^ref1] earlier</p></body>`,
			wantCount: 1,
			wantIn:    "unrendered footnote marker",
		},
		{
			name:      "leaked closing tag text",
			html:      `<body><p>broken &lt;/div&gt; here</p></body>`,
			wantCount: 1,
			wantIn:    "unrendered leaked tag text",
		},
		{
			name:      "straight double quote",
			html:      `<body><p>he said &quot;hello&quot; then left</p></body>`,
			wantCount: 1,
			wantIn:    "unrendered straight double quote",
		},
		{
			name:      "dash sequence",
			html:      `<body><p>wait -- what</p></body>`,
			wantCount: 1,
			wantIn:    "unrendered dash sequence",
		},
		{
			name:      "heading marker at start",
			html:      `<body><p># Not a heading</p></body>`,
			wantCount: 1,
			wantIn:    "unrendered heading marker",
		},
		{
			name:      "hash mid-text is fine",
			html:      `<body><p>issue # 42 got fixed</p></body>`,
			wantCount: 0,
		},
		{
			name:      "paired asterisks",
			html:      `<body><p>this is *important* today</p></body>`,
			wantCount: 1,
			wantIn:    "unrendered emphasis",
		},
		{
			name:      "leading asterisk authorship note exempt",
			html:      `<body><p>*Equal contribution by both authors*</p></body>`,
			wantCount: 0,
		},
		{
			name:      "paired underscores",
			html:      `<body><p>the _hidden_ meaning</p></body>`,
			wantCount: 1,
			wantIn:    "unrendered emphasis",
		},
		{
			name:      "underscore percentage statistic exempt",
			html:      `<body><p>the _95% interval</p></body>`,
			wantCount: 0,
		},
		{
			name:      "paragraph nested in list item counted once",
			html:      `<body><ul><li><p>wait -- what</p></li></ul></body>`,
			wantCount: 1,
			wantIn:    "unrendered dash sequence",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestContext(t, tc.html)
			got := NewArtifactCheck().Run(context.Background(), c)
			assertIssueCount(t, got, tc.wantCount)
			if tc.wantIn != "" {
				assertContains(t, got, tc.wantIn)
			}
		})
	}
}

// TestExcerpt tests context trimming around a match.
func TestExcerpt(t *testing.T) {
	t.Parallel()

	t.Run("short text returned whole", func(t *testing.T) {
		t.Parallel()

		if got := excerpt("a -- b", "--"); got != "a -- b" {
			t.Errorf("excerpt() = %q", got)
		}
	})

	t.Run("long text trimmed around match", func(t *testing.T) {
		t.Parallel()

		text := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa -- bbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
		got := excerpt(text, "--")
		if len(got) >= len(text) {
			t.Errorf("excerpt not trimmed: %q", got)
		}
		if got[0] != 'a' || got[len(got)-1] != 'b' {
			t.Errorf("excerpt lost context: %q", got)
		}
	})
}
