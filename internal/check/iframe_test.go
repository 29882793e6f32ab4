package check

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestIframeCheck tests reachability probing of iframe srcs.
func TestIframeCheck(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	t.Run("reachable embed is clean", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(t, `<body><iframe src="`+server.URL+`/ok"></iframe></body>`)
		got := NewIframeCheck().Run(context.Background(), c)
		assertIssueCount(t, got, 0)
	})

	t.Run("non-2xx status reported", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(t, `<body><iframe src="`+server.URL+`/gone"></iframe></body>`)
		got := NewIframeCheck().Run(context.Background(), c)
		assertIssueCount(t, got, 1)
		assertContains(t, got, "iframe returned status 404")
	})

	t.Run("network failure is a soft issue", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(t, `<body><iframe src="http://127.0.0.1:1/x"></iframe></body>`)
		got := NewIframeCheck().Run(context.Background(), c)
		assertIssueCount(t, got, 1)
		assertContains(t, got, "iframe unreachable")
	})

	t.Run("relative src skipped", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(t, `<body><iframe src="/embeds/map.html"></iframe></body>`)
		got := NewIframeCheck().Run(context.Background(), c)
		assertIssueCount(t, got, 0)
	})

	t.Run("malformed absolute src reported without a request", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(t, `<body><iframe src="http://%zz/x"></iframe></body>`)
		got := NewIframeCheck().Run(context.Background(), c)
		assertIssueCount(t, got, 1)
		assertContains(t, got, "malformed iframe src")
	})

	t.Run("duplicate srcs probed once", func(t *testing.T) {
		t.Parallel()

		c := newTestContext(t, `<body><iframe src="`+server.URL+`/gone"></iframe>`+
			`<iframe src="`+server.URL+`/gone"></iframe></body>`)
		got := NewIframeCheck().Run(context.Background(), c)
		assertIssueCount(t, got, 1)
	})
}
