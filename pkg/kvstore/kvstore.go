// Package kvstore provides the hierarchical key/value namespace the inventory
// persists into. Keys are '/' separated paths; each key holds named values
// and may have sub-keys, mirroring a registry hive.
package kvstore

import (
	"encoding/binary"
	"strings"

	"github.com/glorpus-work/tally/pkg/errors"
)

// Store is the get/set/enumerate/delete contract of a persistent namespace.
type Store interface {
	// CreateKey creates key and all of its ancestors.
	CreateKey(key string) error
	// KeyExists reports whether key was created.
	KeyExists(key string) (bool, error)
	// SubKeys lists the direct children of key in lexical order.
	SubKeys(key string) ([]string, error)
	// GetString returns errors.ErrValueNotFound if the value is missing or not a string.
	GetString(key, name string) (string, error)
	// SetString stores a string value, creating key if needed.
	SetString(key, name, value string) error
	// GetUint32 returns errors.ErrValueNotFound if the value is missing or not numeric.
	GetUint32(key, name string) (uint32, error)
	// SetUint32 stores a numeric value, creating key if needed.
	SetUint32(key, name string, value uint32) error
	// DeleteKey removes key, its values and all sub-keys.
	DeleteKey(key string) error
	// Close releases the underlying resources.
	Close() error
}

// Join builds a key path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

func cleanKey(key string) (string, error) {
	key = strings.Trim(key, "/")
	if strings.ContainsRune(key, 0) || strings.Contains(key, "//") {
		return "", errors.Wrapf(errors.ErrInvalidKey, "%q", key)
	}
	return key, nil
}

func ancestors(key string) []string {
	if key == "" {
		return nil
	}
	segs := strings.Split(key, "/")
	out := make([]string, len(segs))
	for i := range segs {
		out[i] = strings.Join(segs[:i+1], "/")
	}
	return out
}

// value encoding: one type byte followed by the payload.
const (
	typeString byte = 's'
	typeUint32 byte = 'd'
)

func encodeString(s string) []byte {
	return append([]byte{typeString}, s...)
}

func encodeUint32(v uint32) []byte {
	buf := make([]byte, 5)
	buf[0] = typeUint32
	binary.BigEndian.PutUint32(buf[1:], v)
	return buf
}

func decodeString(raw []byte) (string, bool) {
	if len(raw) == 0 || raw[0] != typeString {
		return "", false
	}
	return string(raw[1:]), true
}

func decodeUint32(raw []byte) (uint32, bool) {
	if len(raw) != 5 || raw[0] != typeUint32 {
		return 0, false
	}
	return binary.BigEndian.Uint32(raw[1:]), true
}
