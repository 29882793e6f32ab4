// Package model defines the core data structures shared across sitecheck:
// per-file issue reports, the site-wide report, the cross-file citation
// index, and markdown front matter metadata.
package model
