package inventory

import (
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/kvstore"
	"github.com/glorpus-work/tally/pkg/model"
)

// Persisted layout below the kvstore root.
const (
	RootKey     = "Inventory"
	PackagesKey = RootKey + "/Packages"

	ValuePath          = "Path"
	ValueDetectionInfo = "DetectionInfo"
	ValueExternal      = "External"
)

// EntryKey returns the kvstore key of id's entry.
func EntryKey(id model.Identity) string {
	return kvstore.Join(PackagesKey, id.EntryName())
}

// Store is the single-writer inventory. All mutations are serialized and
// persisted immediately; persistence failures leave the in-memory state
// changed and are collected for WriteErrors.
type Store struct {
	mu      sync.RWMutex
	kv      kvstore.Store
	records map[string]*Record
	errs    *multierror.Error

	obsMu     sync.RWMutex
	observers []Observer
	// notifyMu is taken before mu is released so deliveries keep the
	// order of the mutations that caused them.
	notifyMu sync.Mutex
}

// NewStore creates an empty inventory persisting into kv.
func NewStore(kv kvstore.Store) *Store {
	return &Store{
		kv:      kv,
		records: make(map[string]*Record),
	}
}

// Subscribe registers o for status changes.
func (s *Store) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// Find returns a copy of the record for id.
func (s *Store) Find(id model.Identity) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id.Key()]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// FindOrCreate returns the record for id, creating and persisting an empty
// one first if none exists.
func (s *Store) FindOrCreate(id model.Identity) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.findOrCreateLocked(id)
}

func (s *Store) findOrCreateLocked(id model.Identity) *Record {
	if r, ok := s.records[id.Key()]; ok {
		return r
	}
	r := &Record{Identity: id}
	s.records[id.Key()] = r
	s.persistLocked(r)
	return r
}

// SetDirectory sets the installation directory of id, creating the record
// if needed. The record is persisted on every call.
func (s *Store) SetDirectory(id model.Identity, dir string) {
	s.mu.Lock()
	r := s.findOrCreateLocked(id)
	s.setDirectoryLocked(r, dir)
}

// SetDirectoryIfNotInstalled behaves like SetDirectory unless id is
// already installed, in which case nothing changes. It reports whether the
// directory was set.
func (s *Store) SetDirectoryIfNotInstalled(id model.Identity, dir string) bool {
	s.mu.Lock()
	r := s.findOrCreateLocked(id)
	if r.Installed() {
		s.mu.Unlock()
		return false
	}
	s.setDirectoryLocked(r, dir)
	return true
}

// setDirectoryLocked releases mu.
func (s *Store) setDirectoryLocked(r *Record, dir string) {
	prev := r.Directory
	r.Directory = dir
	s.persistLocked(r)
	if prev == dir {
		s.mu.Unlock()
		return
	}
	ev := Event{Identity: r.Identity, Directory: dir, Previous: prev}
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	s.deliver(ev)
}

// SetDetectionInfo updates the provenance tag of id, creating the record if
// needed.
func (s *Store) SetDetectionInfo(id model.Identity, info string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.findOrCreateLocked(id)
	if r.DetectionInfo == info {
		return
	}
	r.DetectionInfo = info
	s.persistLocked(r)
}

func (s *Store) deliver(ev Event) {
	s.obsMu.RLock()
	obs := append([]Observer(nil), s.observers...)
	s.obsMu.RUnlock()
	for _, o := range obs {
		o.StatusChanged(ev)
	}
}

func (s *Store) persistLocked(r *Record) {
	key := EntryKey(r.Identity)
	if err := s.kv.SetString(key, ValuePath, r.Directory); err != nil {
		s.recordWriteErr(key, err)
		return
	}
	if err := s.kv.SetString(key, ValueDetectionInfo, r.DetectionInfo); err != nil {
		s.recordWriteErr(key, err)
	}
}

func (s *Store) recordWriteErr(key string, err error) {
	wrapped := errors.Wrapf(errors.ErrPersistenceWrite, "%s: %v", key, err)
	logger.Warn("failed to persist inventory entry", logger.Fields{"key": key, "error": err})
	s.errs = multierror.Append(s.errs, wrapped)
}

// WriteErrors returns the persistence failures collected since the last
// call and resets the collection. It returns nil if every write succeeded.
func (s *Store) WriteErrors() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.errs.ErrorOrNil()
	s.errs = nil
	return err
}

// Records returns a snapshot of all records ordered by identity.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return model.CompareIdentities(out[i].Identity, out[j].Identity) < 0
	})
	return out
}

// InstalledDirectories returns the distinct directories of all installed
// records, sorted.
func (s *Store) InstalledDirectories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, r := range s.records {
		if r.Installed() {
			seen[r.Directory] = struct{}{}
		}
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
