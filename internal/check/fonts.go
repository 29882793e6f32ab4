package check

import (
	"context"
	"fmt"
)

// criticalCSSID is the id of the inlined above-the-fold style block.
const criticalCSSID = "critical-css"

// CriticalCSSCheck requires exactly one inlined critical style block in
// the head. Zero means flash-of-unstyled-content; more than one means the
// inliner ran twice.
type CriticalCSSCheck struct{}

// NewCriticalCSSCheck creates a CriticalCSSCheck.
func NewCriticalCSSCheck() *CriticalCSSCheck {
	return &CriticalCSSCheck{}
}

// Name returns the check key.
func (*CriticalCSSCheck) Name() string {
	return NameCriticalCSS
}

// Run counts style#critical-css blocks in the head.
func (*CriticalCSSCheck) Run(_ context.Context, c *Context) []string {
	count := c.Doc.Find("head style#" + criticalCSSID).Length()
	if count == 1 {
		return nil
	}
	return []string{fmt.Sprintf("expected exactly 1 style#%s block in head, found %d", criticalCSSID, count)}
}

// FontPreloadCheck requires at least one font preload hint in the head so
// text renders without a swap flash. Opt-in: local font files are not
// always present in CI checkouts.
type FontPreloadCheck struct{}

// NewFontPreloadCheck creates a FontPreloadCheck.
func NewFontPreloadCheck() *FontPreloadCheck {
	return &FontPreloadCheck{}
}

// Name returns the check key.
func (*FontPreloadCheck) Name() string {
	return NameFontPreload
}

// Run looks for a font preload link in the head.
func (*FontPreloadCheck) Run(_ context.Context, c *Context) []string {
	if c.Doc.Find(`head link[rel="preload"][as="font"]`).Length() > 0 {
		return nil
	}
	return []string{"no font preload link found in head"}
}
