// Package diff inspects unified diffs before they touch the filesystem:
// format detection, target path extraction, and strip-level detection.
package diff

import (
	"strings"
)

// IsUnified reports whether the text looks like a unified diff: at least
// one ---/+++ header pair followed by an @@ hunk marker.
func IsUnified(patch string) bool {
	var sawOld, sawNew bool
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "--- "):
			sawOld = true
		case strings.HasPrefix(line, "+++ "):
			sawNew = true
		case strings.HasPrefix(line, "@@"):
			if sawOld && sawNew {
				return true
			}
		}
	}
	return false
}

// Paths returns the file paths a unified diff touches, with any a/ b/
// prefixes stripped and /dev/null entries dropped. Order follows first
// appearance; duplicates are removed.
func Paths(patch string) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, line := range strings.Split(patch, "\n") {
		var raw string
		switch {
		case strings.HasPrefix(line, "--- "):
			raw = headerPath(line[4:])
		case strings.HasPrefix(line, "+++ "):
			raw = headerPath(line[4:])
		default:
			continue
		}
		if raw == "" || raw == "/dev/null" {
			continue
		}
		p := stripPrefix(raw)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}

// DetectStrip returns the -p level to apply the diff with: 1 when every
// path carries the conventional a/ or b/ prefix, 0 otherwise.
func DetectStrip(patch string) int {
	sawAny := false
	for _, line := range strings.Split(patch, "\n") {
		if !strings.HasPrefix(line, "--- ") && !strings.HasPrefix(line, "+++ ") {
			continue
		}
		raw := headerPath(line[4:])
		if raw == "" || raw == "/dev/null" {
			continue
		}
		sawAny = true
		if !strings.HasPrefix(raw, "a/") && !strings.HasPrefix(raw, "b/") {
			return 0
		}
	}
	if sawAny {
		return 1
	}
	return 0
}

// headerPath extracts the path token from a diff header payload, cutting
// at the timestamp tab if present.
func headerPath(s string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func stripPrefix(p string) string {
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}
