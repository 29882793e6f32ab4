package check

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"github.com/yashiro/sitecheck/internal/config"
)

// headTagPattern matches the opening of a <meta> or <title> tag in raw
// bytes. Placement is a property of the byte stream, not the parsed tree:
// crawlers budget raw bytes.
var headTagPattern = regexp.MustCompile(`(?i)<(meta|title)[\s>/]`)

// headClose locates the end of the head section.
var headClose = []byte("</head>")

// HeadPlacementCheck verifies that every <meta> and <title> tag sits
// within the crawler byte budget and before </head>.
type HeadPlacementCheck struct{}

// NewHeadPlacementCheck creates a HeadPlacementCheck.
func NewHeadPlacementCheck() *HeadPlacementCheck {
	return &HeadPlacementCheck{}
}

// Name returns the check key.
func (*HeadPlacementCheck) Name() string {
	return NameHeadPlacement
}

// Run scans the raw byte stream for late metadata tags.
func (*HeadPlacementCheck) Run(_ context.Context, c *Context) []string {
	raw := c.Doc.Raw()
	if len(raw) == 0 {
		return nil
	}

	budget := utf8Boundary(raw, config.HeadBudgetBytes)
	headEnd := bytes.Index(raw, headClose)

	var issues []string
	for _, loc := range headTagPattern.FindAllSubmatchIndex(raw, -1) {
		offset := loc[0]
		tag := string(raw[loc[2]:loc[3]])
		switch {
		case headEnd >= 0 && offset > headEnd:
			issues = append(issues, fmt.Sprintf("<%s> after </head> (byte offset %d)", tag, offset))
		case offset >= budget:
			issues = append(issues, fmt.Sprintf("<%s> beyond the first %d bytes (byte offset %d)", tag, config.HeadBudgetBytes, offset))
		}
	}
	return issues
}

// utf8Boundary returns the largest offset <= limit that does not split a
// UTF-8 rune. The budget is defined in bytes but must never cut a
// character in half when mapped back to text.
func utf8Boundary(raw []byte, limit int) int {
	if limit >= len(raw) {
		return len(raw)
	}
	for limit > 0 && raw[limit]&0xC0 == 0x80 {
		limit--
	}
	return limit
}
