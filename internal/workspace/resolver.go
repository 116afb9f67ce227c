// Package workspace bounds all file tool operations to a single root
// directory and assembles redacted context bundles for remote backends.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathEscapeError reports a path that would leave the workspace root,
// either via `..` traversal or via a symlink planted inside the
// workspace. Always fatal to the single tool call; never retried.
type PathEscapeError struct {
	Path   string
	Reason string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path %q escapes the workspace: %s", e.Path, e.Reason)
}

// IsPathEscape reports whether err is a PathEscapeError.
func IsPathEscape(err error) bool {
	_, ok := err.(*PathEscapeError)
	return ok
}

// Resolver resolves workspace-relative paths to absolute paths, rejecting
// traversal and symlink escape.
type Resolver struct {
	root string
}

// NewResolver creates a resolver rooted at the given directory. The root
// is made absolute and symlink-dereferenced once at construction.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid workspace root %q: %w", root, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root %q: %w", root, err)
	}
	info, err := os.Stat(real)
	if err != nil {
		return nil, fmt.Errorf("workspace root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %q is not a directory", root)
	}
	return &Resolver{root: real}, nil
}

// Root returns the resolved absolute workspace root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a workspace-relative path to an absolute path.
//
// The check is two-stage. First, syntactic: absolute inputs and
// normalized paths that climb above the root (`..` prefix) are rejected
// before any filesystem access. Second, physical: the candidate's real
// (symlink-dereferenced) path must sit under the root's real path on a
// path-segment boundary, so a symlink inside the workspace pointing
// outside it is caught, and /workspace-evil never matches /workspace.
//
// For paths that do not exist yet (e.g. a write_file target), the deepest
// existing ancestor is dereferenced instead, so a symlinked parent
// directory cannot smuggle a new file out of the workspace.
func (r *Resolver) Resolve(relative string) (string, error) {
	if relative == "" {
		return "", &PathEscapeError{Path: relative, Reason: "empty path"}
	}
	if filepath.IsAbs(relative) {
		return "", &PathEscapeError{Path: relative, Reason: "absolute paths are not allowed"}
	}

	cleaned := filepath.Clean(relative)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", &PathEscapeError{Path: relative, Reason: "path climbs above the workspace root"}
	}

	candidate := filepath.Join(r.root, cleaned)

	real, err := resolveExisting(candidate)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", relative, err)
	}

	if !isWithin(r.root, real) {
		return "", &PathEscapeError{Path: relative, Reason: fmt.Sprintf("resolves to %s outside the workspace", real)}
	}
	return candidate, nil
}

// resolveExisting dereferences symlinks for the deepest existing prefix of
// path and rejoins the non-existing suffix.
func resolveExisting(path string) (string, error) {
	var suffix []string
	current := path
	for {
		real, err := filepath.EvalSymlinks(current)
		if err == nil {
			if len(suffix) == 0 {
				return real, nil
			}
			parts := append([]string{real}, suffix...)
			return filepath.Join(parts...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		suffix = append([]string{filepath.Base(current)}, suffix...)
		current = parent
	}
}

// isWithin reports whether path equals root or is a descendant of it,
// comparing on path-segment boundaries.
func isWithin(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
