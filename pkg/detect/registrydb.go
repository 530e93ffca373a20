package detect

import (
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/job"
)

// RegistryDB loads the inventory's own persisted entries and makes every
// loaded version known to the catalog.
type RegistryDB struct {
	env *Env
}

// NewRegistryDB creates the registry-database detector.
func NewRegistryDB(env *Env) *RegistryDB {
	return &RegistryDB{env: env}
}

// Name implements Detector.
func (d *RegistryDB) Name() string { return "registry-db" }

// Detect implements Detector. A failure here means the persisted store is
// unreadable.
func (d *RegistryDB) Detect(j job.Job, store *inventory.Store) (Report, error) {
	if err := store.Load(); err != nil {
		return Report{}, err
	}
	var rep Report
	for _, r := range store.Records() {
		d.env.register(r.Identity)
		rep.Observed++
	}
	j.Complete()
	return rep, nil
}
