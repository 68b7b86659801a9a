// Package storage owns the on-disk side of the shelf: one directory per
// folder under the upload root, holding the PDF bytes.
//
// Every filesystem call that uses a client-supplied name goes through a
// PathGuard first. Nothing in this package joins raw input onto a path.
package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pdfshelf/internal/domain"
)

// PathGuard resolves relative names against one trusted base directory and
// rejects anything that would land outside it.
type PathGuard struct {
	base string // absolute, cleaned, symlinks resolved
}

// NewPathGuard normalizes baseDir once. The directory must exist.
func NewPathGuard(baseDir string) (*PathGuard, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	return &PathGuard{base: resolved}, nil
}

// Base returns the normalized base directory.
func (g *PathGuard) Base() string {
	return g.base
}

// Resolve returns the absolute, normalized path of candidate under the base.
// Symlinks along existing parts of the path are followed before the bounds
// check, so a link pointing outside the base is rejected too. The base
// itself is not a valid result.
func (g *PathGuard) Resolve(candidate string) (string, error) {
	reject := &domain.PathRejectedError{Path: candidate}

	if candidate == "" || strings.ContainsRune(candidate, 0) {
		return "", reject
	}
	if filepath.IsAbs(candidate) || filepath.VolumeName(candidate) != "" {
		return "", reject
	}

	joined := filepath.Join(g.base, candidate)
	resolved, err := evalExisting(joined)
	if err != nil {
		return "", reject
	}
	if !isDescendant(g.base, resolved) {
		return "", reject
	}
	return resolved, nil
}

// Resolve is the one-shot form of PathGuard.Resolve for callers holding only
// a base directory path.
func Resolve(candidate, baseDir string) (string, error) {
	g, err := NewPathGuard(baseDir)
	if err != nil {
		return "", &domain.PathRejectedError{Path: candidate}
	}
	return g.Resolve(candidate)
}

// sub returns a guard rooted at dir, which must already be a resolved
// descendant of g. dir need not exist yet.
func (g *PathGuard) sub(dir string) *PathGuard {
	return &PathGuard{base: dir}
}

// evalExisting resolves symlinks in the longest existing prefix of path and
// re-attaches the remaining, not yet existing, components.
func evalExisting(path string) (string, error) {
	var rest []string
	current := path
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(rest) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, rest[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		rest = append(rest, filepath.Base(current))
		current = parent
	}
}

// isDescendant compares path components, so /data/fooX is not inside /data/foo.
func isDescendant(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}
