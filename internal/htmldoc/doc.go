// Package htmldoc loads generated HTML files into a navigable document
// tree and provides the traversal helpers the check library depends on.
//
// Documents are read-only by contract: checks inspect the tree but must
// never modify it. The runner enforces this with Snapshot, which renders
// the tree to bytes before and after the checks run.
package htmldoc
