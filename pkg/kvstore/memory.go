package kvstore

import (
	"sort"
	"strings"
	"sync"

	"github.com/glorpus-work/tally/pkg/errors"
)

// Memory is a map-backed Store for tests and dry runs.
type Memory struct {
	mu     sync.RWMutex
	keys   map[string]struct{}
	values map[string]map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		keys:   make(map[string]struct{}),
		values: make(map[string]map[string][]byte),
	}
}

// CreateKey implements Store.
func (m *Memory) CreateKey(key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.create(key)
	return nil
}

func (m *Memory) create(key string) {
	for _, k := range ancestors(key) {
		m.keys[k] = struct{}{}
	}
}

// KeyExists implements Store.
func (m *Memory) KeyExists(key string) (bool, error) {
	key, err := cleanKey(key)
	if err != nil {
		return false, err
	}
	if key == "" {
		return true, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.keys[key]
	return ok, nil
}

// SubKeys implements Store.
func (m *Memory) SubKeys(key string) ([]string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	prefix := ""
	if key != "" {
		prefix = key + "/"
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for k := range m.keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := k[len(prefix):]
		if rest != "" && !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) get(key, name string) ([]byte, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.values[key][name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrValueNotFound, "%s\\%s", key, name)
	}
	return raw, nil
}

func (m *Memory) set(key, name string, raw []byte) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.create(key)
	if m.values[key] == nil {
		m.values[key] = make(map[string][]byte)
	}
	m.values[key][name] = raw
	return nil
}

// GetString implements Store.
func (m *Memory) GetString(key, name string) (string, error) {
	raw, err := m.get(key, name)
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
func (m *Memory) SetString(key, name, value string) error {
	return m.set(key, name, encodeString(value))
}

// GetUint32 implements Store.
func (m *Memory) GetUint32(key, name string) (uint32, error) {
	raw, err := m.get(key, name)
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
func (m *Memory) SetUint32(key, name string, value uint32) error {
	return m.set(key, name, encodeUint32(value))
}

// DeleteKey implements Store.
func (m *Memory) DeleteKey(key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if key == "" {
		return errors.Wrap(errors.ErrInvalidKey, "refusing to delete the root key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.keys {
		if k == key || strings.HasPrefix(k, key+"/") {
			delete(m.keys, k)
			delete(m.values, k)
		}
	}
	return nil
}

// Close implements Store.
func (m *Memory) Close() error {
	return nil
}
