package model

import (
	"fmt"
	"sort"
	"strings"
)

// CitationIndex accumulates BibTeX citation keys across the whole site walk.
// Keys are collected per file; Finalize flags any key referenced from more
// than one output file.
//
// The index is only ever touched from the single walking goroutine, so it
// needs no locking.
type CitationIndex struct {
	// keyToFiles maps a citation key to the relative paths referencing it.
	keyToFiles map[string][]string
}

// NewCitationIndex creates an empty citation index.
func NewCitationIndex() *CitationIndex {
	return &CitationIndex{
		keyToFiles: make(map[string][]string),
	}
}

// Record registers the citation keys found in one file.
// Duplicate keys within the same file are recorded once.
func (c *CitationIndex) Record(fileRelPath string, keys []string) {
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		c.keyToFiles[key] = append(c.keyToFiles[key], fileRelPath)
	}
}

// Finalize returns one issue per citation key referenced from more than one
// file. Keys and file lists are sorted for deterministic output.
func (c *CitationIndex) Finalize() []string {
	keys := make([]string, 0, len(c.keyToFiles))
	for key, files := range c.keyToFiles {
		if len(files) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	issues := make([]string, 0, len(keys))
	for _, key := range keys {
		files := append([]string(nil), c.keyToFiles[key]...)
		sort.Strings(files)
		issues = append(issues, fmt.Sprintf(
			"citation key %q referenced in %d files: %s",
			key, len(files), strings.Join(files, ", ")))
	}
	return issues
}
