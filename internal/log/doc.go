// Package log provides slog handler utilities for sitecheck.
package log
