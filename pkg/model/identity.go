package model

import (
	"regexp"
	"strings"

	"github.com/glorpus-work/tally/pkg/errors"
)

var packageNamePattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+(\.[A-Za-z0-9_\-]+)*$`)

// IsValidPackageName reports whether name follows the reverse-DNS-like naming grammar:
// dot separated, non-empty segments made of letters, digits, '_' and '-'.
func IsValidPackageName(name string) bool {
	return packageNamePattern.MatchString(name)
}

// ValidatePackageName returns a ParseError if name is not a valid package name.
func ValidatePackageName(name string) error {
	if !IsValidPackageName(name) {
		return &ParseError{Input: name, Reason: "invalid package name", Kind: errors.ErrInvalidPackageName}
	}
	return nil
}

// MakeValidPackageName maps an arbitrary string onto the package naming grammar.
// Invalid characters become '_', empty segments are dropped.
func MakeValidPackageName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	segments := strings.Split(b.String(), ".")
	kept := segments[:0]
	for _, s := range segments {
		if s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return "_"
	}
	return strings.Join(kept, ".")
}

// Identity names one installable unit: a package name and a normalized version.
type Identity struct {
	pkg     string
	version Version
}

// NewIdentity builds an identity. The version is normalized so that versions
// which compare equal produce the same key.
func NewIdentity(pkg string, version Version) Identity {
	return Identity{pkg: pkg, version: version.Normalize()}
}

// Package returns the package name.
func (id Identity) Package() string { return id.pkg }

// Version returns the normalized version.
func (id Identity) Version() Version { return id.version }

// Key returns the canonical map key "<package>/<version>".
func (id Identity) Key() string {
	return id.pkg + "/" + id.version.String()
}

// EntryName returns the persisted entry name "<package>-<version>".
func (id Identity) EntryName() string {
	return id.pkg + "-" + id.version.String()
}

// String implements fmt.Stringer.
func (id Identity) String() string {
	return id.pkg + " " + id.version.String()
}

// ParseEntryName splits "<package>-<version>" at the last '-' and validates both halves.
func ParseEntryName(name string) (Identity, error) {
	pos := strings.LastIndex(name, "-")
	if pos <= 0 {
		return Identity{}, &ParseError{Input: name, Reason: "missing package/version separator"}
	}
	pkg := name[:pos]
	if err := ValidatePackageName(pkg); err != nil {
		return Identity{}, err
	}
	v, err := ParseVersion(name[pos+1:])
	if err != nil {
		return Identity{}, err
	}
	return NewIdentity(pkg, v), nil
}

// CompareIdentities orders by package name, then by version descending.
func CompareIdentities(a, b Identity) int {
	if c := strings.Compare(a.pkg, b.pkg); c != 0 {
		return c
	}
	return -a.version.Compare(b.version)
}
