package registry

import (
	"strings"

	"github.com/joshuapare/pkgdep/pkg/types"
)

// KeyName returns the last segment of path, ignoring trailing separators.
// "grandparent\parent\child\" and "grandparent\parent\child" both yield
// "child".
func KeyName(path string) string {
	path = strings.TrimRight(path, types.PathSeparator)
	if i := strings.LastIndex(path, types.PathSeparator); i >= 0 {
		return path[i+1:]
	}
	return path
}

// SplitPath breaks path into its non-empty segments.
func SplitPath(path string) []string {
	parts := strings.Split(path, types.PathSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinPath joins segments with the path separator.
func JoinPath(segments ...string) string {
	return strings.Join(segments, types.PathSeparator)
}
