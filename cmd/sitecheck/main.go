// Package main provides the entry point for the sitecheck CLI.
//
// sitecheck validates a static site's generated output against a catalog
// of structural and textual rules, cross-checking each page against its
// markdown source.
//
// Usage:
//
//	sitecheck check --site-dir ./public --content-dir ./content
//	sitecheck compare
//
// See --help for all available options.
package main

// main is the entry point for sitecheck.
func main() {
	Execute()
}
