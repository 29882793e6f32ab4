package check

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// IframeCheck probes every absolute iframe src with a HEAD request and
// reports unreachable embeds as soft issues. Relative srcs point at the
// site itself and are covered by the media checks.
type IframeCheck struct{}

// NewIframeCheck creates an IframeCheck.
func NewIframeCheck() *IframeCheck {
	return &IframeCheck{}
}

// Name returns the check key.
func (*IframeCheck) Name() string {
	return NameIframes
}

// Run probes iframe srcs concurrently with a bounded worker group.
// Network failures are issues, never errors: an unreachable embed is a
// finding about the page, not a failure of the run.
func (*IframeCheck) Run(ctx context.Context, c *Context) []string {
	var targets []string
	var issues []string
	seen := make(map[string]bool)

	c.Doc.Find("iframe[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" || seen[src] {
			return
		}
		seen[src] = true

		if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
			return
		}
		u, err := url.Parse(src)
		if err != nil || u.Host == "" {
			issues = append(issues, fmt.Sprintf("malformed iframe src: %s", src))
			return
		}
		targets = append(targets, src)
	})

	if len(targets) == 0 {
		return issues
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Config.IframeConcurrency)

	for _, target := range targets {
		g.Go(func() error {
			if issue := probeIframe(ctx, c, target); issue != "" {
				mu.Lock()
				issues = append(issues, issue)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait() // workers only record issues

	sort.Strings(issues)
	return issues
}

// probeIframe issues one HEAD request and classifies the outcome.
func probeIframe(ctx context.Context, c *Context, target string) string {
	ctx, cancel := context.WithTimeout(ctx, c.Config.IframeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return fmt.Sprintf("malformed iframe src: %s", target)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Sprintf("iframe unreachable: %s (%v)", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Sprintf("iframe returned status %d: %s", resp.StatusCode, target)
	}
	return ""
}
