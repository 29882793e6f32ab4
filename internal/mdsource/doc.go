// Package mdsource reads markdown source files: front matter, asset
// references, and the permalink/alias maps used to pair generated HTML
// files with the markdown they were rendered from.
package mdsource
