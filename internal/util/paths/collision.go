// Package paths provides utilities for local file path handling in uploads.
package paths

import (
	"path/filepath"
	"sort"
	"strings"
)

// Collision is a set of local paths that share one upload name.
type Collision struct {
	Name  string   // Base name the backend will see
	Paths []string // Local paths in input order
}

// FindCollisions groups paths whose base names are equal ignoring case.
// The backend stores uploads by file name, so only the last of such a group
// survives. Groups are sorted by name; paths keep input order.
//
// Example: "a/cat.png" and "b/CAT.png" form one collision named "cat.png".
func FindCollisions(paths []string) []Collision {
	if len(paths) < 2 {
		return nil
	}

	groups := make(map[string][]string)
	display := make(map[string]string)
	for _, p := range paths {
		base := filepath.Base(p)
		key := strings.ToLower(base)
		if _, ok := display[key]; !ok {
			display[key] = base
		}
		groups[key] = append(groups[key], p)
	}

	var out []Collision
	for key, group := range groups {
		if len(group) <= 1 {
			continue
		}
		out = append(out, Collision{Name: display[key], Paths: group})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CollisionCount returns how many paths are involved in collisions.
func CollisionCount(collisions []Collision) int {
	n := 0
	for _, c := range collisions {
		n += len(c.Paths)
	}
	return n
}
