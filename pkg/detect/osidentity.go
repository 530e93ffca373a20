package detect

import (
	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/job"
	"github.com/glorpus-work/tally/pkg/model"
	"github.com/glorpus-work/tally/pkg/platform"
)

// OSIdentity registers the running OS version at the OS root, plus its
// bit-width specific variant where the OS has one.
type OSIdentity struct {
	env *Env
}

// NewOSIdentity creates the OS identity detector.
func NewOSIdentity(env *Env) *OSIdentity {
	return &OSIdentity{env: env}
}

// Name implements Detector.
func (d *OSIdentity) Name() string { return "os" }

// Detect implements Detector.
func (d *OSIdentity) Detect(j job.Job, store *inventory.Store) (Report, error) {
	v, err := d.env.Platform.OSVersion()
	if err != nil {
		return Report{}, errors.Wrapf(errors.ErrSourceUnavailable, "OS version: %v", err)
	}
	root := d.env.Platform.Root()
	base, bitness := platform.OSPackages(d.env.Platform)

	var rep Report
	for _, name := range []string{base, bitness} {
		if name == "" {
			continue
		}
		id := model.NewIdentity(name, v)
		d.env.register(id)
		store.SetDirectory(id, root)
		rep.Observed++
	}
	j.Complete()
	return rep, nil
}
