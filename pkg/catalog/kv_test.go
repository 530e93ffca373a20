package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/kvstore"
	"github.com/glorpus-work/tally/pkg/model"
)

func TestKVRepository_AddPackageVersion(t *testing.T) {
	r := NewKVRepository(kvstore.NewMemory())

	p, err := r.FindPackage("com.example.tool")
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, r.AddPackageVersion("com.example.tool", model.MustParseVersion("1.2.0")))
	require.NoError(t, r.AddPackageVersion("com.example.tool", model.MustParseVersion("1.2")))

	p, err = r.FindPackage("com.example.tool")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "com.example.tool", p.Title, "title defaults to the name")

	pv, err := r.FindPackageVersion("com.example.tool", model.MustParseVersion("1.2.0.0"))
	require.NoError(t, err)
	require.NotNil(t, pv)
	assert.Equal(t, "1.2", pv.Version.String())

	pv, err = r.FindPackageVersion("com.example.tool", model.MustParseVersion("2"))
	require.NoError(t, err)
	assert.Nil(t, pv)
}

func TestKVRepository_AddPackageVersion_KeepsMetadata(t *testing.T) {
	r := NewKVRepository(kvstore.NewMemory())
	require.NoError(t, r.SavePackage(&Package{Name: "com.example.tool", Title: "Tool", URL: "https://example.com"}))
	require.NoError(t, r.AddPackageVersion("com.example.tool", model.MustParseVersion("1")))

	p, err := r.FindPackage("com.example.tool")
	require.NoError(t, err)
	assert.Equal(t, "Tool", p.Title)
	assert.Equal(t, "https://example.com", p.URL)
}

func TestKVRepository_InvalidNames(t *testing.T) {
	r := NewKVRepository(kvstore.NewMemory())
	err := r.AddPackageVersion("bad name", model.MustParseVersion("1"))
	assert.True(t, errors.Is(err, errors.ErrInvalidPackageName))

	p, err := r.FindPackage("bad name")
	assert.NoError(t, err)
	assert.Nil(t, p)

	assert.Error(t, r.SavePackage(&Package{Name: ""}))
	assert.NoError(t, r.SavePackage(nil))
}

func TestKVRepository_ExternalID(t *testing.T) {
	r := NewKVRepository(kvstore.NewMemory())
	guid := "{11111111-2222-3333-4444-555555555555}"

	pv, err := r.FindPackageVersionByExternalID(guid)
	require.NoError(t, err)
	assert.Nil(t, pv)

	require.NoError(t, r.SavePackageVersion(&PackageVersion{
		Package:    "com.example.widget",
		Version:    model.MustParseVersion("3.1.0"),
		ExternalID: guid,
	}))

	pv, err = r.FindPackageVersionByExternalID(guid)
	require.NoError(t, err)
	require.NotNil(t, pv)
	assert.Equal(t, "com.example.widget", pv.Package)
	assert.Equal(t, "3.1", pv.Version.String())
	assert.Equal(t, guid, pv.ExternalID)

	p, err := r.FindPackage("com.example.widget")
	require.NoError(t, err)
	assert.NotNil(t, p, "saving a version creates its package")
}
