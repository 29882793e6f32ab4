package config

import "errors"

// Configuration validation errors.
// Package-level sentinel errors let callers use errors.Is() while keeping
// the messages human-readable.
var (
	// ErrNoSiteDir is returned when the site output directory is empty.
	ErrNoSiteDir = errors.New("no site directory specified: use --site-dir")

	// ErrNoContentDir is returned when the markdown content directory is
	// empty. The walker needs it to pair pages with their sources.
	ErrNoContentDir = errors.New("no content directory specified: use --content-dir")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidIframeTimeout is returned when the iframe timeout is not
	// positive. A zero timeout would fail every reachability check.
	ErrInvalidIframeTimeout = errors.New("invalid iframe timeout: must be positive")

	// ErrInvalidIframeConcurrency is returned when the iframe concurrency
	// limit is not positive.
	ErrInvalidIframeConcurrency = errors.New("invalid iframe concurrency: must be positive")

	// ErrConfigNotFound is returned when an explicitly requested
	// configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
