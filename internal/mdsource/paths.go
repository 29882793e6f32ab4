package mdsource

import "strings"

// stagingPrefix is the scratch directory where media assets live before
// they are uploaded to the CDN. References in markdown keep this prefix;
// rendered HTML does not.
const stagingPrefix = "asset_staging/"

// NormalizeAssetPath reduces an asset reference to its canonical form:
// surrounding whitespace, a leading "./" or "/", the staging directory
// prefix, and any query string are removed. The function is idempotent;
// normalizing an already-normalized path returns it unchanged.
func NormalizeAssetPath(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, "./")
	ref = strings.TrimPrefix(ref, "/")
	ref = strings.TrimPrefix(ref, stagingPrefix)
	if i := strings.IndexByte(ref, '?'); i >= 0 {
		ref = ref[:i]
	}
	return ref
}
