// Package check implements the predicate library: independent, stateless
// checks over one parsed HTML document, each verifying a single structural
// or textual rule of the generated site.
//
// Every check obeys the same contract: it never panics on a well-formed
// document, it never mutates the tree, an empty result means "clean", and
// a check whose auxiliary context (markdown source, CSS variables) is
// missing silently returns nothing.
package check
