// Package pathmodel implements C1: canonical forward-slash archive paths,
// relative-path derivation, and safe-path validation. Every other package
// that needs to turn a filesystem path into an archive-path string, or
// vice versa, goes through here.
package pathmodel

import (
	"path"
	"path/filepath"
	"strings"
)

// maxPathLength bounds candidate paths read out of an archive. 4096 is the
// common Linux PATH_MAX; it is not meant to be a hard OS guarantee, only a
// sanity cap against pathological archive entries.
const maxPathLength = 4096

// ToArchivePath strips base from source and returns the remainder as a
// forward-slash relative path. It returns ok=false if source does not lie
// under base.
func ToArchivePath(source, base string) (rel string, ok bool) {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return "", false
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", false
	}

	r, err := filepath.Rel(absBase, absSource)
	if err != nil {
		return "", false
	}
	if r == "." {
		return "", true
	}
	if strings.HasPrefix(r, "..") {
		return "", false
	}

	r = filepath.ToSlash(r)
	r = path.Clean(r)
	return r, true
}

// IsSafePath reports whether candidate is safe to write to disk during
// extraction: no ".." segment, not absolute on the host OS, not a UNC
// path, and within the path-length sanity cap.
func IsSafePath(candidate string) bool {
	if candidate == "" {
		return false
	}
	if len(candidate) >= maxPathLength {
		return false
	}
	if strings.HasPrefix(candidate, `\\`) {
		return false
	}
	if filepath.IsAbs(candidate) {
		return false
	}
	slashed := filepath.ToSlash(candidate)
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

// JoinHost joins dir and rel using the host path separator, normalizing
// rel's forward slashes first so at most one separator appears at the
// boundary.
func JoinHost(dir, rel string) string {
	native := filepath.FromSlash(rel)
	return filepath.Join(dir, native)
}
