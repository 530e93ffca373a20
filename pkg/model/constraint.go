package model

import (
	"github.com/hashicorp/go-version"

	"github.com/glorpus-work/tally/pkg/errors"
)

// MatchConstraint checks whether v satisfies a constraint such as ">= 1.2, < 2".
// An empty constraint matches every version.
func MatchConstraint(v Version, constraint string) (bool, error) {
	if constraint == "" {
		return true, nil
	}
	c, err := version.NewConstraint(constraint)
	if err != nil {
		return false, errors.Wrapf(errors.ErrParse, "constraint %q", constraint)
	}
	gv, err := version.NewVersion(v.String())
	if err != nil {
		return false, errors.Wrapf(errors.ErrParse, "version %q", v.String())
	}
	return c.Check(gv), nil
}
