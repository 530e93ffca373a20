package source

import (
	"sort"
	"strings"
	"sync"

	"github.com/glorpus-work/tally/pkg/errors"
)

type memNode struct {
	name     string
	strs     map[string]string
	dwords   map[string]uint32
	children map[string]*memNode
}

func newMemNode(name string) *memNode {
	return &memNode{
		name:     name,
		strs:     make(map[string]string),
		dwords:   make(map[string]uint32),
		children: make(map[string]*memNode),
	}
}

type rootID struct {
	hive Hive
	view View
}

// MemoryRegistry is an in-memory Registry. Key and value names compare
// case-insensitively like the Windows registry.
type MemoryRegistry struct {
	mu    sync.RWMutex
	roots map[rootID]*memNode
}

// NewMemoryRegistry creates an empty tree.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{roots: make(map[rootID]*memNode)}
}

func (m *MemoryRegistry) walk(hive Hive, view View, path string, create bool) *memNode {
	id := rootID{hive, view}
	n := m.roots[id]
	if n == nil {
		if !create {
			return nil
		}
		n = newMemNode(hive.String())
		m.roots[id] = n
	}
	for _, seg := range SplitPath(path) {
		child := n.children[strings.ToLower(seg)]
		if child == nil {
			if !create {
				return nil
			}
			child = newMemNode(seg)
			n.children[strings.ToLower(seg)] = child
		}
		n = child
	}
	return n
}

// CreateKey creates path and its ancestors.
func (m *MemoryRegistry) CreateKey(hive Hive, view View, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.walk(hive, view, path, true)
}

// SetString stores a string value, creating the key if needed.
func (m *MemoryRegistry) SetString(hive Hive, view View, path, name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.walk(hive, view, path, true)
	n.strs[strings.ToLower(name)] = value
	delete(n.dwords, strings.ToLower(name))
}

// SetUint32 stores a numeric value, creating the key if needed.
func (m *MemoryRegistry) SetUint32(hive Hive, view View, path, name string, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.walk(hive, view, path, true)
	n.dwords[strings.ToLower(name)] = value
	delete(n.strs, strings.ToLower(name))
}

// DeleteKey removes path and everything below it. Missing keys are ignored.
func (m *MemoryRegistry) DeleteKey(hive Hive, view View, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	segs := SplitPath(path)
	if len(segs) == 0 {
		delete(m.roots, rootID{hive, view})
		return
	}
	parent := m.walk(hive, view, JoinPath(segs[:len(segs)-1]...), false)
	if parent != nil {
		delete(parent.children, strings.ToLower(segs[len(segs)-1]))
	}
}

// Open implements Registry.
func (m *MemoryRegistry) Open(hive Hive, path string, view View) (Key, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := m.walk(hive, view, path, false)
	if n == nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, `%s\%s (view %s)`, hive, path, view)
	}
	full := hive.String()
	if p := JoinPath(path); p != "" {
		full += `\` + p
	}
	return &memKey{reg: m, node: n, path: full}, nil
}

type memKey struct {
	reg  *MemoryRegistry
	node *memNode
	path string
}

func (k *memKey) Path() string { return k.path }

func (k *memKey) SubKeyNames() ([]string, error) {
	k.reg.mu.RLock()
	defer k.reg.mu.RUnlock()
	names := make([]string, 0, len(k.node.children))
	for _, c := range k.node.children {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names, nil
}

func (k *memKey) OpenSubKey(name string) (Key, error) {
	k.reg.mu.RLock()
	defer k.reg.mu.RUnlock()
	n := k.node
	for _, seg := range SplitPath(name) {
		n = n.children[strings.ToLower(seg)]
		if n == nil {
			return nil, errors.Wrapf(errors.ErrSourceUnavailable, `%s\%s`, k.path, name)
		}
	}
	return &memKey{reg: k.reg, node: n, path: k.path + `\` + JoinPath(name)}, nil
}

func (k *memKey) String(name string) (string, error) {
	k.reg.mu.RLock()
	defer k.reg.mu.RUnlock()
	v, ok := k.node.strs[strings.ToLower(name)]
	if !ok {
		return "", errors.Wrapf(errors.ErrValueNotFound, `%s\%s`, k.path, name)
	}
	return v, nil
}

func (k *memKey) Uint32(name string) (uint32, error) {
	k.reg.mu.RLock()
	defer k.reg.mu.RUnlock()
	v, ok := k.node.dwords[strings.ToLower(name)]
	if !ok {
		return 0, errors.Wrapf(errors.ErrValueNotFound, `%s\%s`, k.path, name)
	}
	return v, nil
}

func (k *memKey) Close() error { return nil }

// MemoryMSI is an in-memory MSI product database.
type MemoryMSI struct {
	mu       sync.RWMutex
	products []string
	props    map[string]map[string]string
}

// NewMemoryMSI creates an empty product database.
func NewMemoryMSI() *MemoryMSI {
	return &MemoryMSI{props: make(map[string]map[string]string)}
}

// AddProduct registers product with the given properties. Adding a product
// twice replaces its properties.
func (m *MemoryMSI) AddProduct(product string, props map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.props[product]; !ok {
		m.products = append(m.products, product)
	}
	cp := make(map[string]string, len(props))
	for k, v := range props {
		cp[k] = v
	}
	m.props[product] = cp
}

// RemoveProduct drops product from the database.
func (m *MemoryMSI) RemoveProduct(product string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.props[product]; !ok {
		return
	}
	delete(m.props, product)
	for i, p := range m.products {
		if p == product {
			m.products = append(m.products[:i], m.products[i+1:]...)
			break
		}
	}
}

// Products implements MSI.
func (m *MemoryMSI) Products() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.products...), nil
}

// ProductInfo implements MSI.
func (m *MemoryMSI) ProductInfo(product, property string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	props, ok := m.props[product]
	if !ok {
		return "", errors.Wrapf(errors.ErrSourceUnavailable, "unknown product %s", product)
	}
	v, ok := props[property]
	if !ok {
		return "", errors.Wrapf(errors.ErrValueNotFound, "%s of %s", property, product)
	}
	return v, nil
}
