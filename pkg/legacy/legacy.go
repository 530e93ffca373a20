// Package legacy imports installations made under the old flat directory
// convention, where every version lived in a "<package>-<version>" folder
// below a single base directory.
package legacy

import (
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/catalog"
	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/fsutil"
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/kvstore"
	"github.com/glorpus-work/tally/pkg/model"
)

// MarkerValue is the value on inventory.RootKey that records a completed
// migration.
const MarkerValue = "LegacyDirScanned"

// Entry is one folder of the legacy layout.
type Entry struct {
	Identity model.Identity
	Dir      string
}

// Scanner reads the legacy layout below Base.
type Scanner struct {
	fs   afero.Fs
	base string
}

// NewScanner creates a scanner for base. An empty base disables scanning.
func NewScanner(fs afero.Fs, base string) *Scanner {
	return &Scanner{fs: fs, base: base}
}

// Base returns the scanned directory.
func (s *Scanner) Base() string { return s.base }

// Scan lists the folders whose names parse as an identity, ordered by
// identity. A missing base directory yields no entries.
func (s *Scanner) Scan() ([]Entry, error) {
	if s.base == "" || !fsutil.IsDir(s.fs, s.base) {
		return nil, nil
	}
	infos, err := afero.ReadDir(s.fs, s.base)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "read %s: %v", s.base, err)
	}

	var entries []Entry
	for _, fi := range infos {
		if !fi.IsDir() {
			continue
		}
		id, err := model.ParseEntryName(fi.Name())
		if err != nil {
			logger.Debug("skipping legacy folder", logger.Fields{"name": fi.Name(), "error": err})
			continue
		}
		entries = append(entries, Entry{Identity: id, Dir: filepath.Join(s.base, fi.Name())})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return model.CompareIdentities(entries[i].Identity, entries[j].Identity) < 0
	})
	return entries, nil
}

// Migrated reports whether the one-shot migration marker is set.
func Migrated(kv kvstore.Store) bool {
	v, err := kv.GetUint32(inventory.RootKey, MarkerValue)
	return err == nil && v == 1
}

// Migrate writes every legacy folder as a raw inventory entry, bypassing
// validation against known packages, and then sets the marker. It does
// nothing once the marker is set. Entry write failures are logged and
// skipped; failing to set the marker is returned as ErrPersistenceWrite.
func (s *Scanner) Migrate(kv kvstore.Store) (int, error) {
	if Migrated(kv) {
		return 0, nil
	}
	entries, err := s.Scan()
	if err != nil {
		logger.Warn("legacy directory not readable", logger.Fields{"dir": s.base, "error": err})
	}

	written := 0
	for _, e := range entries {
		key := inventory.EntryKey(e.Identity)
		if err := writeRaw(kv, key, e.Dir); err != nil {
			logger.Warn("cannot migrate legacy entry", logger.Fields{"key": key, "error": err})
			continue
		}
		written++
	}

	if err := kv.SetUint32(inventory.RootKey, MarkerValue, 1); err != nil {
		return written, errors.Wrapf(errors.ErrPersistenceWrite, "set migration marker: %v", err)
	}
	logger.Info("legacy directory migrated", logger.Fields{"dir": s.base, "entries": written})
	return written, nil
}

func writeRaw(kv kvstore.Store, key, dir string) error {
	if err := kv.SetString(key, inventory.ValuePath, dir); err != nil {
		return err
	}
	return kv.SetUint32(key, inventory.ValueExternal, 0)
}

// RegisterKnown records the legacy folders of packages the catalog already
// knows. Unknown names are left alone so arbitrary folders are not turned
// into packages on every refresh.
func (s *Scanner) RegisterKnown(store *inventory.Store, repo catalog.Repository) (int, error) {
	entries, err := s.Scan()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		p, err := repo.FindPackage(e.Identity.Package())
		if err != nil || p == nil {
			continue
		}
		store.SetDirectory(e.Identity, e.Dir)
		n++
	}
	return n, nil
}
