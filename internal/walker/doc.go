// Package walker enumerates a generated site's HTML output, resolves each
// page to its markdown source, and drives the per-file check battery plus
// the site-level checks.
package walker
