// Package paths holds the two path operations the coordinator's upward
// config search and case-folding actually need. It intentionally does not
// carry general-purpose repo-relative path helpers: this module has no
// notion of a single repo root a path is canonicalized against — a script
// lives wherever the host says it lives, and the only root-like value in
// play is upwardConfigSearch's optional per-call bound.
package paths

import (
	"path/filepath"
	"strings"
)

// FoldCase lower-cases path when the host filesystem is case-insensitive, so
// two paths differing only in case normalize to the same map key. Scripts
// and config-presence entries are keyed by the folded form.
func FoldCase(path string, caseSensitive bool) string {
	if caseSensitive {
		return path
	}
	return strings.ToLower(path)
}

// WalkUpward iteratively yields dir and each of its ancestors up to (and
// including) boundedRoot, or up to the filesystem root if boundedRoot is
// empty. Iteration stops when the parent of the current path equals the
// current path itself, which is how a descent to "/" (or a drive root on
// Windows) is detected without special-casing the separator.
func WalkUpward(dir string, boundedRoot string) []string {
	dir = filepath.Clean(dir)
	boundedRoot = filepath.Clean(boundedRoot)

	var levels []string
	for {
		levels = append(levels, dir)
		if boundedRoot != "" && dir == boundedRoot {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return levels
}
