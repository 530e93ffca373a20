package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/tally/pkg/errors"
)

func TestIsValidPackageName(t *testing.T) {
	valid := []string{"com.example.tool", "a", "control-panel.Foo_Bar", "msi.0A1B-2C", "x-y.z_1"}
	invalid := []string{"", ".a", "a.", "a..b", "with space", "a/b", "ä.b"}

	for _, name := range valid {
		assert.True(t, IsValidPackageName(name), name)
		assert.NoError(t, ValidatePackageName(name))
	}
	for _, name := range invalid {
		assert.False(t, IsValidPackageName(name), name)
		err := ValidatePackageName(name)
		assert.True(t, errors.Is(err, errors.ErrInvalidPackageName), name)
		assert.True(t, errors.Is(err, errors.ErrParse), name)
	}
}

func TestMakeValidPackageName(t *testing.T) {
	tests := map[string]string{
		"control-panel.Mozilla Firefox 99_0 (x64 en-US)": "control-panel.Mozilla_Firefox_99_0__x64_en-US_",
		"control-panel.{AC76BA86-7AD7-1033-7B44}":        "control-panel._AC76BA86-7AD7-1033-7B44_",
		"..a..b..": "a.b",
		"":         "_",
	}
	for in, want := range tests {
		got := MakeValidPackageName(in)
		assert.Equal(t, want, got, in)
		assert.True(t, IsValidPackageName(got), got)
	}
}

func TestIdentity(t *testing.T) {
	a := NewIdentity("com.example.tool", MustParseVersion("1.2.0"))
	b := NewIdentity("com.example.tool", MustParseVersion("1.2"))

	assert.Equal(t, a, b)
	assert.Equal(t, "com.example.tool/1.2", a.Key())
	assert.Equal(t, "com.example.tool-1.2", a.EntryName())
	assert.Equal(t, "com.example.tool 1.2", a.String())
	assert.Equal(t, "com.example.tool", a.Package())
}

func TestParseEntryName(t *testing.T) {
	id, err := ParseEntryName("com.example.tool-1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "com.example.tool", id.Package())
	assert.Equal(t, "1.2.3", id.Version().String())

	id, err = ParseEntryName("control-panel.x-y-2.0")
	require.NoError(t, err)
	assert.Equal(t, "control-panel.x-y", id.Package())
	assert.Equal(t, "2", id.Version().String())

	for _, bad := range []string{"noversion", "-1.0", "bad name-1.0", "pkg-1.x", "pkg-"} {
		_, err := ParseEntryName(bad)
		assert.Error(t, err, bad)
	}
}

func TestCompareIdentities(t *testing.T) {
	a1 := NewIdentity("a", MustParseVersion("1"))
	a2 := NewIdentity("a", MustParseVersion("2"))
	b1 := NewIdentity("b", MustParseVersion("1"))

	assert.Negative(t, CompareIdentities(a2, a1), "higher version sorts first")
	assert.Negative(t, CompareIdentities(a1, b1))
	assert.Zero(t, CompareIdentities(a1, a1))
}

func TestMatchConstraint(t *testing.T) {
	ok, err := MatchConstraint(MustParseVersion("1.8.0.292"), ">= 1.8, < 2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = MatchConstraint(MustParseVersion("2.1"), ">= 1.8, < 2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = MatchConstraint(MustParseVersion("3"), "")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = MatchConstraint(MustParseVersion("3"), "~~ nope")
	assert.Error(t, err)
}
