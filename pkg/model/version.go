// Package model provides the value types shared by the inventory: versions,
// package identities and the package naming grammar.
package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glorpus-work/tally/pkg/errors"
)

// ParseError is returned when a version or package name cannot be parsed.
type ParseError struct {
	Input  string
	Reason string
	// Kind narrows the failure, e.g. errors.ErrInvalidPackageName.
	Kind error
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// Unwrap returns errors.ErrParse and Kind so callers can match either with errors.Is.
func (e *ParseError) Unwrap() []error {
	if e.Kind != nil {
		return []error{errors.ErrParse, e.Kind}
	}
	return []error{errors.ErrParse}
}

// Version is an ordered sequence of non-negative integer parts.
// The zero value is the version "0".
type Version struct {
	parts []uint64
}

// NewVersion creates a version from its parts. Without parts it returns "0".
func NewVersion(parts ...uint64) Version {
	if len(parts) == 0 {
		return Version{}
	}
	cp := make([]uint64, len(parts))
	copy(cp, parts)
	return Version{parts: cp}
}

// ParseVersion parses groups of decimal digits separated by '.' or '_'.
// Surrounding whitespace is ignored; anything else, including a trailing
// non-numeric suffix such as "1.0beta", is rejected.
func ParseVersion(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Version{}, &ParseError{Input: s, Reason: "empty version"}
	}

	groups := strings.FieldsFunc(trimmed, isVersionSeparator)
	if len(groups) == 0 || strings.Count(trimmed, ".")+strings.Count(trimmed, "_")+1 != len(groups) {
		return Version{}, &ParseError{Input: s, Reason: "empty version part"}
	}

	parts := make([]uint64, 0, len(groups))
	for _, g := range groups {
		for _, r := range g {
			if r < '0' || r > '9' {
				return Version{}, &ParseError{Input: s, Reason: fmt.Sprintf("non-numeric part %q", g)}
			}
		}
		n, err := strconv.ParseUint(g, 10, 64)
		if err != nil {
			return Version{}, &ParseError{Input: s, Reason: err.Error()}
		}
		parts = append(parts, n)
	}
	return Version{parts: parts}, nil
}

// MustParseVersion is like ParseVersion but panics on error. Intended for constants and tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func isVersionSeparator(r rune) bool {
	return r == '.' || r == '_'
}

func (v Version) values() []uint64 {
	if len(v.parts) == 0 {
		return []uint64{0}
	}
	return v.parts
}

// Parts returns a copy of the version parts.
func (v Version) Parts() []uint64 {
	vals := v.values()
	cp := make([]uint64, len(vals))
	copy(cp, vals)
	return cp
}

// PartCount returns the number of parts; never less than one.
func (v Version) PartCount() int {
	return len(v.values())
}

// Normalize returns a copy with trailing zero parts removed, keeping at least one part.
func (v Version) Normalize() Version {
	vals := v.values()
	n := len(vals)
	for n > 1 && vals[n-1] == 0 {
		n--
	}
	return NewVersion(vals[:n]...)
}

// Prepend returns a copy with part inserted in front of the existing parts.
func (v Version) Prepend(part uint64) Version {
	return NewVersion(append([]uint64{part}, v.values()...)...)
}

// Compare returns -1, 0 or 1. The shorter operand is padded with zero parts.
func (v Version) Compare(other Version) int {
	a, b := v.values(), other.values()
	n := max(len(a), len(b))
	for i := 0; i < n; i++ {
		var x, y uint64
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

// Equal reports whether both versions compare equal.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// IsZero reports whether every part is zero.
func (v Version) IsZero() bool {
	return v.Compare(Version{}) == 0
}

// String returns the dot-joined form of the parts as stored (not normalized).
func (v Version) String() string {
	vals := v.values()
	parts := make([]string, len(vals))
	for i, p := range vals {
		parts[i] = strconv.FormatUint(p, 10)
	}
	return strings.Join(parts, ".")
}
