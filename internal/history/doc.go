// Package history persists validation runs in a local SQLite database so
// successive runs can be compared: which issues are new, which were fixed.
package history
