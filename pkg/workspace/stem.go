package workspace

import (
	"path/filepath"
	"strings"
)

// RootStem returns the root stem of a file basename: the final extension
// is stripped, then the first matching suffix of suffixes, then any
// trailing dots.
func RootStem(base string, suffixes []string) string {
	base = filepath.Base(base)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(stem, s) && len(stem) > len(s) {
			stem = strings.TrimSuffix(stem, s)
			break
		}
	}
	stem = strings.TrimRight(stem, ".")
	if stem == "" {
		return base
	}
	return stem
}

// hasParentRef reports whether a slash or OS separated path contains a
// ".." element.
func hasParentRef(name string) bool {
	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	}) {
		if part == ".." {
			return true
		}
	}
	return false
}
