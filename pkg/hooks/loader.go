package hooks

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/fsutil"
)

// HookFileExtension is the extension of hook script files.
const HookFileExtension = ".tengo"

// LoadHookFile reads a script from path and registers it as hookType.
func LoadHookFile(manager HookManager, fs afero.Fs, hookType HookType, path string) error {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "read %s: %v", path, err)
	}
	if err := manager.AddHook(Hook{Type: hookType, Content: string(content)}); err != nil {
		return errors.Wrapf(err, "error adding hook from %s", path)
	}
	return nil
}

// LoadHooksFromDir loads every "<hook-type>.tengo" file of dir. A missing
// directory is not an error; files of unknown types are skipped.
func LoadHooksFromDir(manager HookManager, fs afero.Fs, dir string) error {
	if !fsutil.IsDir(fs, dir) {
		return nil
	}
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return errors.Wrapf(errors.ErrHookLoad, "read hooks directory %s: %v", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}
		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !hookType.Valid() {
			continue // Skip unknown hooks types
		}
		if err := LoadHookFile(manager, fs, hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// HookTemplate generates a template for a hooks script.
func HookTemplate(hookType HookType) string {
	header := `// Available variables:
// - packageName: string - package of the changed record
// - packageVersion: string - its version
// - directory: string - new installation directory, empty when removed
// - previousDirectory: string - directory before the change
// - installed: bool - whether directory is set
// - vars: map - custom variables
// Set err to a message to report a failure.
`
	switch hookType {
	case StatusChanged:
		return `// Status-changed hook
// This script runs whenever a record's installation directory changes.
` + header + `
/*
fmt := import("fmt")
fmt.println(packageName, " ", packageVersion, ": ", previousDirectory, " -> ", directory)
*/`

	case Installed:
		return `// Installed hook
// This script runs when a package version is found installed.
` + header + `
/*
os := import("os")
if !os.stat(directory) {
    err = "directory vanished: " + directory
}
*/`

	case Removed:
		return `// Removed hook
// This script runs when a package version is no longer installed.
` + header + `
/*
text := import("text")
if text.has_prefix(packageName, "msi.") {
    fmt := import("fmt")
    fmt.println("MSI product removed: ", packageName)
}
*/`

	default:
		return "// Unknown hooks type: " + string(hookType)
	}
}
