// Package inventory keeps the authoritative set of installed package
// versions, one Record per identity, persisted into a kvstore namespace.
package inventory

import "github.com/glorpus-work/tally/pkg/model"

// Record is one known package version. An empty Directory means the
// version is not installed.
type Record struct {
	Identity      model.Identity
	Directory     string
	DetectionInfo string
}

// Installed reports whether the record points at a directory.
func (r Record) Installed() bool {
	return r.Directory != ""
}

// HasProvenance reports whether the record is owned by the given
// detection namespace, e.g. "msi:".
func (r Record) HasProvenance(namespace string) bool {
	return namespace != "" && len(r.DetectionInfo) >= len(namespace) &&
		r.DetectionInfo[:len(namespace)] == namespace
}

// Event reports a change of the installation directory of a record.
type Event struct {
	Identity  model.Identity
	Directory string
	Previous  string
}

// Installed reports whether the change left the version installed.
func (e Event) Installed() bool {
	return e.Directory != ""
}

// Observer receives status changes in the order they were applied.
// Observers must not mutate the Store they are subscribed to.
type Observer interface {
	StatusChanged(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// StatusChanged implements Observer.
func (f ObserverFunc) StatusChanged(e Event) { f(e) }
