// Package report renders a site validation report as plain text, JSON, or
// Markdown.
package report
