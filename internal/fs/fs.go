// Package fs wraps the parts of the environment and file system the CLI depends on,
// so tests can substitute them.
package fs

// defaultResolver is used by the package-level functions.
var defaultResolver = NewPathResolver()

// CanonicalPath returns the canonical, absolute path by resolving symlinks.
func CanonicalPath(path string) (string, error) {
	return defaultResolver.CanonicalPath(path)
}

// FirstDir returns the canonical path of the first non-empty candidate, or of the
// working directory when every candidate is empty.
func FirstDir(candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return CanonicalPath(c)
		}
	}
	return CanonicalPath(".")
}
