// Package runner executes the check battery against single documents.
// It enforces the read-only contract: every check receives the same parsed
// tree, and a check that mutates it aborts the run.
package runner
