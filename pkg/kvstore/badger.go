package kvstore

import (
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/fsutil"
)

// BadgerConfig holds the options for opening a badger-backed store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in RAM; used by tests.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// Verbose forwards badger's own log lines to the tally logger.
	Verbose bool
}

// Badger stores keys as "k:<path>" markers and values as "v:<path>\x00<name>".
type Badger struct {
	db *badger.DB
}

const (
	keyPrefix   = "k:"
	valuePrefix = "v:"
)

type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// OpenBadger opens (creating if necessary) a badger database.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("badger path is required for a persistent store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, fsutil.DirModeSecure); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Verbose {
		opts = opts.WithLogger(badgerLogger{})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Badger{db: db}, nil
}

func markerKey(key string) []byte {
	return []byte(keyPrefix + key)
}

func valueKey(key, name string) []byte {
	return []byte(valuePrefix + key + "\x00" + name)
}

// CreateKey implements Store.
func (b *Badger) CreateKey(key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return createAncestors(txn, key)
	})
}

func createAncestors(txn *badger.Txn, key string) error {
	for _, k := range ancestors(key) {
		if err := txn.Set(markerKey(k), nil); err != nil {
			return err
		}
	}
	return nil
}

// KeyExists implements Store.
func (b *Badger) KeyExists(key string) (bool, error) {
	key, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	if key == "" {
		return true, nil
	}
	exists := false
	err = b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(markerKey(key))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// SubKeys implements Store.
func (b *Badger) SubKeys(key string) ([]string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	prefix := keyPrefix
	if key != "" {
		prefix += key + "/"
	}

	seen := make(map[string]struct{})
	err = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			rest := strings.TrimPrefix(string(it.Item().Key()), prefix)
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				rest = rest[:i]
			}
			if rest != "" {
				seen[rest] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (b *Badger) get(key, name string) ([]byte, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(valueKey(key, name))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.Wrapf(errors.ErrValueNotFound, "%s\\%s", key, name)
		}
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	return raw, err
}

func (b *Badger) set(key, name string, raw []byte) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if err := createAncestors(txn, key); err != nil {
			return err
		}
		return txn.Set(valueKey(key, name), raw)
	})
}

// GetString implements Store.
func (b *Badger) GetString(key, name string) (string, error) {
	raw, err := b.get(key, name)
	if err != nil {
		return "", err
	}
	s, ok := decodeString(raw)
	if !ok {
		return "", errors.Wrapf(errors.ErrValueNotFound, "%s\\%s is not a string", key, name)
	}
	return s, nil
}

// SetString implements Store.
func (b *Badger) SetString(key, name, value string) error {
	return b.set(key, name, encodeString(value))
}

// GetUint32 implements Store.
func (b *Badger) GetUint32(key, name string) (uint32, error) {
	raw, err := b.get(key, name)
	if err != nil {
		return 0, err
	}
	v, ok := decodeUint32(raw)
	if !ok {
		return 0, errors.Wrapf(errors.ErrValueNotFound, "%s\\%s is not numeric", key, name)
	}
	return v, nil
}

// SetUint32 implements Store.
func (b *Badger) SetUint32(key, name string, value uint32) error {
	return b.set(key, name, encodeUint32(value))
}

// DeleteKey implements Store.
func (b *Badger) DeleteKey(key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if key == "" {
		return errors.Wrap(errors.ErrInvalidKey, "refusing to delete the root key")
	}

	var doomed [][]byte
	err = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for _, p := range []string{keyPrefix + key, valuePrefix + key} {
			prefix := []byte(p)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				k := it.Item().KeyCopy(nil)
				rest := string(k[len(prefix):])
				// only the key itself or its descendants, never siblings like "foo-10" for "foo-1"
				if rest == "" || rest[0] == '/' || rest[0] == 0 {
					doomed = append(doomed, k)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range doomed {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Close implements Store.
func (b *Badger) Close() error {
	return b.db.Close()
}
