// Package cmdline splits uninstall command lines into argument vectors.
package cmdline

import (
	"strings"

	"github.com/glorpus-work/tally/pkg/errors"
)

// Split parses cmd into its arguments using the quoting rules of the host
// platform. An empty or blank command yields ErrParse.
func Split(cmd string) ([]string, error) {
	if strings.TrimSpace(cmd) == "" {
		return nil, errors.Wrap(errors.ErrParse, "empty command line")
	}
	args, err := split(cmd)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrParse, "command line %q: %v", cmd, err)
	}
	if len(args) == 0 {
		return nil, errors.Wrapf(errors.ErrParse, "command line %q has no arguments", cmd)
	}
	return args, nil
}

// First returns the program token of cmd.
func First(cmd string) (string, error) {
	args, err := Split(cmd)
	if err != nil {
		return "", err
	}
	return args[0], nil
}
