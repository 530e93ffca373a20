//go:build !windows

package cmdline

import (
	"strings"

	"mvdan.cc/sh/v3/shell"
)

// split lexes cmd with POSIX shell rules. Backslashes are doubled first so
// that Windows paths recorded in snapshots survive the lexer unchanged.
func split(cmd string) ([]string, error) {
	return shell.Fields(strings.ReplaceAll(cmd, `\`, `\\`), func(string) string { return "" })
}
