package inventory

import (
	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/model"
)

// Load replaces the in-memory records with the entries persisted under
// PackagesKey. Malformed entry names are skipped. Entries whose version is
// not in canonical form ("foo-1.0") are moved to the canonical name
// ("foo-1"). No status events are fired.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*Record)

	names, err := s.kv.SubKeys(PackagesKey)
	if err != nil {
		return errors.Wrapf(errors.ErrStoreUnreadable, "%s: %v", PackagesKey, err)
	}

	for _, name := range names {
		id, err := model.ParseEntryName(name)
		if err != nil {
			logger.Debug("skipping malformed inventory entry", logger.Fields{"entry": name, "error": err})
			continue
		}

		key := PackagesKey + "/" + name
		r := &Record{Identity: id}
		r.Directory = s.readString(key, ValuePath)
		r.DetectionInfo = s.readString(key, ValueDetectionInfo)

		if name != id.EntryName() {
			s.rekeyLocked(key, r)
		}
		if existing, ok := s.records[id.Key()]; ok && existing.Installed() {
			continue
		}
		s.records[id.Key()] = r
	}
	return nil
}

func (s *Store) readString(key, name string) string {
	v, err := s.kv.GetString(key, name)
	if err != nil {
		return ""
	}
	return v
}

// rekeyLocked moves a non-canonical entry to EntryKey(r.Identity). An
// existing canonical entry keeps its values.
func (s *Store) rekeyLocked(oldKey string, r *Record) {
	newKey := EntryKey(r.Identity)
	exists, err := s.kv.KeyExists(newKey)
	if err != nil {
		s.recordWriteErr(newKey, err)
		return
	}
	if !exists {
		s.persistLocked(r)
		if ext, err := s.kv.GetUint32(oldKey, ValueExternal); err == nil {
			if err := s.kv.SetUint32(newKey, ValueExternal, ext); err != nil {
				s.recordWriteErr(newKey, err)
			}
		}
	} else {
		r.Directory = s.readString(newKey, ValuePath)
		r.DetectionInfo = s.readString(newKey, ValueDetectionInfo)
	}
	if err := s.kv.DeleteKey(oldKey); err != nil {
		s.recordWriteErr(oldKey, err)
		return
	}
	logger.Debug("moved inventory entry to canonical name", logger.Fields{"from": oldKey, "to": newKey})
}
