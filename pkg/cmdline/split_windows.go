//go:build windows

package cmdline

import "golang.org/x/sys/windows"

func split(cmd string) ([]string, error) {
	return windows.DecomposeCommandLine(cmd)
}
