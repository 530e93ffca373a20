package kvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/tally/pkg/errors"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	bdb, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"badger": bdb,
	}
}

func TestStore_Values(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			key := Join("Inventory", "Packages", "com.example.tool-1.2")

			_, err := s.GetString(key, "Path")
			assert.True(t, errors.Is(err, errors.ErrValueNotFound))

			require.NoError(t, s.SetString(key, "Path", `C:\Tools`))
			got, err := s.GetString(key, "Path")
			require.NoError(t, err)
			assert.Equal(t, `C:\Tools`, got)

			require.NoError(t, s.SetString(key, "Path", ""))
			got, err = s.GetString(key, "Path")
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, s.SetUint32(key, "External", 1))
			n, err := s.GetUint32(key, "External")
			require.NoError(t, err)
			assert.Equal(t, uint32(1), n)

			_, err = s.GetUint32(key, "Path")
			assert.True(t, errors.Is(err, errors.ErrValueNotFound), "type mismatch reads as missing")
			_, err = s.GetString(key, "External")
			assert.True(t, errors.Is(err, errors.ErrValueNotFound))
		})
	}
}

func TestStore_KeysAndSubKeys(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.CreateKey("Inventory/Packages"))
			require.NoError(t, s.SetString("Inventory/Packages/b-1", "Path", ""))
			require.NoError(t, s.SetString("Inventory/Packages/a-2", "Path", "/x"))
			require.NoError(t, s.SetUint32("Inventory", "LegacyDirScanned", 1))

			ok, err := s.KeyExists("Inventory")
			require.NoError(t, err)
			assert.True(t, ok, "ancestors are created implicitly")

			ok, err = s.KeyExists("Inventory/Nope")
			require.NoError(t, err)
			assert.False(t, ok)

			subs, err := s.SubKeys("Inventory/Packages")
			require.NoError(t, err)
			assert.Equal(t, []string{"a-2", "b-1"}, subs)

			subs, err = s.SubKeys("Inventory")
			require.NoError(t, err)
			assert.Equal(t, []string{"Packages"}, subs)

			subs, err = s.SubKeys("")
			require.NoError(t, err)
			assert.Equal(t, []string{"Inventory"}, subs)

			subs, err = s.SubKeys("Missing")
			require.NoError(t, err)
			assert.Empty(t, subs)
		})
	}
}

func TestStore_DeleteKey(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SetString("P/foo-1", "Path", "/a"))
			require.NoError(t, s.SetString("P/foo-1/Extra", "X", "y"))
			require.NoError(t, s.SetString("P/foo-10", "Path", "/b"))

			require.NoError(t, s.DeleteKey("P/foo-1"))

			subs, err := s.SubKeys("P")
			require.NoError(t, err)
			assert.Equal(t, []string{"foo-10"}, subs, "sibling sharing a prefix survives")

			_, err = s.GetString("P/foo-1", "Path")
			assert.True(t, errors.Is(err, errors.ErrValueNotFound))
			got, err := s.GetString("P/foo-10", "Path")
			require.NoError(t, err)
			assert.Equal(t, "/b", got)

			assert.Error(t, s.DeleteKey(""))
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			err := s.SetString("a//b", "x", "y")
			assert.True(t, errors.Is(err, errors.ErrInvalidKey))
		})
	}
}

func TestBadger_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	b, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, b.SetString("Inventory/Packages/x-1", "Path", "/opt/x"))
	require.NoError(t, b.Close())

	b, err = OpenBadger(BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer func() { _ = b.Close() }()
	got, err := b.GetString("Inventory/Packages/x-1", "Path")
	require.NoError(t, err)
	assert.Equal(t, "/opt/x", got)
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.Error(t, err)
}
