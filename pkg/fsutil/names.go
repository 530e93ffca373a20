package fsutil

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
)

const invalidFilenameChars = `<>:"/\|?*`

// MakeValidFilename replaces characters that are not allowed in a file name
// with repl. Control characters are replaced too.
func MakeValidFilename(name string, repl rune) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(invalidFilenameChars, r) {
			b.WriteRune(repl)
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimRight(b.String(), ". ")
	if out == "" {
		return string(repl)
	}
	return out
}

// Exists reports whether path exists on fs. Stat errors read as absence.
func Exists(fs afero.Fs, path string) bool {
	if path == "" {
		return false
	}
	_, err := fs.Stat(path)
	return err == nil
}

// IsDir reports whether path is an existing directory on fs.
func IsDir(fs afero.Fs, path string) bool {
	if path == "" {
		return false
	}
	ok, err := afero.IsDir(fs, path)
	return err == nil && ok
}

// FindNonExistingPath returns base if it does not exist, otherwise the first
// of base_2, base_3, ... that is free.
func FindNonExistingPath(fs afero.Fs, base string) string {
	if !Exists(fs, base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !Exists(fs, candidate) {
			return candidate
		}
	}
}
