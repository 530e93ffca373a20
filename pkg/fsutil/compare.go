package fsutil

import (
	"runtime"
	"strings"
)

// NormalizePath turns both separator styles into '/' and strips trailing
// separators. A bare root ("/" or "C:/") keeps its separator.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		if len(p) == 3 && p[1] == ':' {
			break
		}
		p = p[:len(p)-1]
	}
	return p
}

func hasDriveLetter(p string) bool {
	return len(p) >= 2 && p[1] == ':' &&
		((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}

func foldCase(a, b string) bool {
	return runtime.GOOS == "windows" || hasDriveLetter(a) || hasDriveLetter(b)
}

// PathEquals compares two paths after normalization. Windows paths compare
// case-insensitively.
func PathEquals(a, b string) bool {
	a, b = NormalizePath(a), NormalizePath(b)
	if foldCase(a, b) {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// IsUnder reports whether child lies strictly inside parent.
// Empty paths are never nested.
func IsUnder(child, parent string) bool {
	if child == "" || parent == "" {
		return false
	}
	c, p := NormalizePath(child), NormalizePath(parent)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	if len(c) <= len(p) {
		return false
	}
	prefix := c[:len(p)]
	if foldCase(c, p) {
		return strings.EqualFold(prefix, p)
	}
	return prefix == p
}

// IsUnderOrEquals reports whether dir equals or lies inside any entry of dirs.
func IsUnderOrEquals(dir string, dirs []string) bool {
	if dir == "" {
		return false
	}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if PathEquals(dir, d) || IsUnder(dir, d) {
			return true
		}
	}
	return false
}
