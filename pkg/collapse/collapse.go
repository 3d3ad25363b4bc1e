// Package collapse reduces a set of discovered paths so that no path is
// reported alongside one of its ancestors.
package collapse

import (
	"path/filepath"
	"sort"

	"github.com/arthur-debert/remnant/pkg/paths"
)

// Mode selects how descendants are detected
type Mode int

const (
	// Adjacent compares each path only against the last kept path. With
	// sorted input this misses a descendant when a sibling sharing the
	// parent's prefix sorts in between (e.g. /A/B, /A/B-x, /A/B/C).
	Adjacent Mode = iota
	// Ancestors compares each path against every kept path
	Ancestors
)

func (m Mode) String() string {
	switch m {
	case Adjacent:
		return "adjacent"
	case Ancestors:
		return "ancestors"
	default:
		return "unknown"
	}
}

// Collapse cleans, sorts and deduplicates paths, then removes every path
// that is a descendant of another kept path.
func Collapse(in []string, mode Mode) []string {
	sorted := make([]string, 0, len(in))
	for _, p := range in {
		if p == "" {
			continue
		}
		sorted = append(sorted, filepath.Clean(p))
	}
	sort.Strings(sorted)

	out := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		if covered(out, p, mode) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func covered(kept []string, p string, mode Mode) bool {
	if len(kept) == 0 {
		return false
	}
	if mode == Adjacent {
		return IsDescendant(p, kept[len(kept)-1])
	}
	for _, k := range kept {
		if IsDescendant(p, k) {
			return true
		}
	}
	return false
}

// IsDescendant reports whether child lies strictly below parent
func IsDescendant(child, parent string) bool {
	return paths.IsDescendant(child, parent)
}

// DropTrashed returns an empty result when the only remaining path lies in
// a trash directory; an app already in the trash has nothing else left.
func DropTrashed(in []string) []string {
	if len(in) == 1 && paths.IsTrashed(in[0]) {
		return []string{}
	}
	return in
}
