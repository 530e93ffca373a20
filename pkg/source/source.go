// Package source abstracts the structured OS evidence sources detectors
// read from: registry-like key trees and the installer product database.
// Live adapters exist for Windows; the in-memory adapters back snapshot
// replays and tests on every platform.
package source

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/tally/pkg/errors"
)

// Hive selects the root of a key tree.
type Hive int

const (
	// LocalMachine is the machine-wide tree.
	LocalMachine Hive = iota
	// CurrentUser is the per-user tree.
	CurrentUser
)

func (h Hive) String() string {
	switch h {
	case LocalMachine:
		return "HKEY_LOCAL_MACHINE"
	case CurrentUser:
		return "HKEY_CURRENT_USER"
	default:
		return fmt.Sprintf("HIVE(%d)", int(h))
	}
}

// ParseHive accepts both the long and the abbreviated hive names.
func ParseHive(s string) (Hive, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HKLM", "HKEY_LOCAL_MACHINE":
		return LocalMachine, nil
	case "HKCU", "HKEY_CURRENT_USER":
		return CurrentUser, nil
	}
	return 0, errors.Wrapf(errors.ErrParse, "unknown hive %q", s)
}

// View selects the bit-width view of a key tree.
type View int

const (
	ViewDefault View = iota
	View32
	View64
)

func (v View) String() string {
	switch v {
	case View32:
		return "32"
	case View64:
		return "64"
	default:
		return "default"
	}
}

// ParseView accepts "", "default", "32" and "64".
func ParseView(s string) (View, error) {
	switch strings.TrimSpace(s) {
	case "", "default":
		return ViewDefault, nil
	case "32":
		return View32, nil
	case "64":
		return View64, nil
	}
	return 0, errors.Wrapf(errors.ErrParse, "unknown view %q", s)
}

// Registry opens keys of a registry-like tree.
type Registry interface {
	// Open returns errors.ErrSourceUnavailable if the key cannot be opened.
	Open(hive Hive, path string, view View) (Key, error)
}

// Key is one open node of a Registry.
type Key interface {
	// Path is the full path including the hive name, e.g.
	// HKEY_LOCAL_MACHINE\SOFTWARE\Foo.
	Path() string
	SubKeyNames() ([]string, error)
	OpenSubKey(name string) (Key, error)
	// String returns errors.ErrValueNotFound for missing or non-string values.
	String(name string) (string, error)
	// Uint32 returns errors.ErrValueNotFound for missing or non-numeric values.
	Uint32(name string) (uint32, error)
	Close() error
}

// Installer product properties.
const (
	PropVersionString   = "VersionString"
	PropProductName     = "ProductName"
	PropURLInfoAbout    = "URLInfoAbout"
	PropHelpLink        = "HelpLink"
	PropInstallLocation = "InstallLocation"
)

// MSI queries the OS installer product database.
type MSI interface {
	// Products lists the product codes ({GUID} form) of all installed products.
	Products() ([]string, error)
	// ProductInfo returns errors.ErrValueNotFound for unknown properties.
	ProductInfo(product, property string) (string, error)
}

// SplitPath splits a key path on either separator, dropping empty segments.
func SplitPath(path string) []string {
	fields := strings.FieldsFunc(path, func(r rune) bool { return r == '\\' || r == '/' })
	return fields
}

// JoinPath joins key path segments with a backslash.
func JoinPath(segments ...string) string {
	var parts []string
	for _, s := range segments {
		parts = append(parts, SplitPath(s)...)
	}
	return strings.Join(parts, `\`)
}
