//go:build windows

package source

import (
	stderrors "errors"
	"sort"

	"golang.org/x/sys/windows/registry"

	"github.com/glorpus-work/tally/pkg/errors"
)

// WindowsRegistry reads the live Windows registry.
type WindowsRegistry struct{}

// NewWindowsRegistry returns the live registry adapter.
func NewWindowsRegistry() *WindowsRegistry {
	return &WindowsRegistry{}
}

// Open implements Registry.
func (WindowsRegistry) Open(hive Hive, path string, view View) (Key, error) {
	var root registry.Key
	switch hive {
	case LocalMachine:
		root = registry.LOCAL_MACHINE
	case CurrentUser:
		root = registry.CURRENT_USER
	default:
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "unsupported hive %s", hive)
	}

	access := uint32(registry.READ)
	switch view {
	case View32:
		access |= registry.WOW64_32KEY
	case View64:
		access |= registry.WOW64_64KEY
	}

	k, err := registry.OpenKey(root, path, access)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, `%s\%s: %v`, hive, path, err)
	}
	return &winKey{key: k, path: hive.String() + `\` + JoinPath(path), access: access}, nil
}

type winKey struct {
	key    registry.Key
	path   string
	access uint32
}

func (k *winKey) Path() string { return k.path }

func (k *winKey) SubKeyNames() ([]string, error) {
	names, err := k.key.ReadSubKeyNames(-1)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "enumerate %s: %v", k.path, err)
	}
	sort.Strings(names)
	return names, nil
}

func (k *winKey) OpenSubKey(name string) (Key, error) {
	sub, err := registry.OpenKey(k.key, name, k.access)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, `%s\%s: %v`, k.path, name, err)
	}
	return &winKey{key: sub, path: k.path + `\` + name, access: k.access}, nil
}

func (k *winKey) String(name string) (string, error) {
	v, _, err := k.key.GetStringValue(name)
	if err != nil {
		return "", valueErr(k.path, name, err)
	}
	return v, nil
}

func (k *winKey) Uint32(name string) (uint32, error) {
	v, _, err := k.key.GetIntegerValue(name)
	if err != nil {
		return 0, valueErr(k.path, name, err)
	}
	return uint32(v), nil
}

func (k *winKey) Close() error {
	return k.key.Close()
}

func valueErr(path, name string, err error) error {
	if stderrors.Is(err, registry.ErrNotExist) || stderrors.Is(err, registry.ErrUnexpectedType) {
		return errors.Wrapf(errors.ErrValueNotFound, `%s\%s`, path, name)
	}
	return errors.Wrapf(errors.ErrSourceUnavailable, `%s\%s: %v`, path, name, err)
}
