package reconcile

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/kvstore"
	"github.com/glorpus-work/tally/pkg/model"
)

func id(pkg string, v uint64) model.Identity {
	return model.NewIdentity(pkg, model.NewVersion(v))
}

func TestConflate(t *testing.T) {
	tests := []struct {
		name    string
		dirs    map[string]string
		root    string
		want    map[string]string
		cleared int
	}{
		{
			name:    "nested inside later record",
			dirs:    map[string]string{"com.a": `C:\Apps\Foo`, "com.b": `C:\Apps\Foo\bin`},
			want:    map[string]string{"com.a": `C:\Apps\Foo`, "com.b": ""},
			cleared: 1,
		},
		{
			name:    "nested inside earlier record",
			dirs:    map[string]string{"com.a": `C:\Apps\Foo\bin`, "com.b": `C:\Apps\Foo`},
			want:    map[string]string{"com.a": "", "com.b": `C:\Apps\Foo`},
			cleared: 1,
		},
		{
			name:    "unrelated paths",
			dirs:    map[string]string{"com.a": `C:\Apps\Foo`, "com.b": `C:\Apps\Foobar`},
			want:    map[string]string{"com.a": `C:\Apps\Foo`, "com.b": `C:\Apps\Foobar`},
			cleared: 0,
		},
		{
			name:    "same directory, case and separator differences",
			dirs:    map[string]string{"com.a": `C:\Apps\Foo`, "com.b": `c:/apps/foo/`},
			want:    map[string]string{"com.a": `C:\Apps\Foo`, "com.b": ""},
			cleared: 1,
		},
		{
			name:    "root is shared",
			root:    `C:\Windows`,
			dirs:    map[string]string{"com.a": `C:\Windows`, "com.b": `C:\Windows`, "com.c": `C:\Windows\System32`},
			want:    map[string]string{"com.a": `C:\Windows`, "com.b": `C:\Windows`, "com.c": `C:\Windows\System32`},
			cleared: 0,
		},
		{
			name:    "chain keeps only the outermost",
			dirs:    map[string]string{"com.a": "/x/y/z", "com.b": "/x", "com.c": "/x/y"},
			want:    map[string]string{"com.a": "", "com.b": "/x", "com.c": ""},
			cleared: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := inventory.NewStore(kvstore.NewMemory())
			for pkg, dir := range tt.dirs {
				store.SetDirectory(id(pkg, 1), dir)
			}
			assert.Equal(t, tt.cleared, Conflate(store, tt.root))
			for pkg, dir := range tt.want {
				r, ok := store.Find(id(pkg, 1))
				require.True(t, ok)
				assert.Equal(t, dir, r.Directory, pkg)
			}
		})
	}
}

func TestConflate_VersionsOfSamePackage(t *testing.T) {
	store := inventory.NewStore(kvstore.NewMemory())
	store.SetDirectory(id("com.a", 1), "/apps/a")
	store.SetDirectory(id("com.a", 2), "/apps/a")

	assert.Equal(t, 1, Conflate(store, "/"))
	r, _ := store.Find(id("com.a", 2))
	assert.True(t, r.Installed(), "the newest version comes first and keeps the directory")
	r, _ = store.Find(id("com.a", 1))
	assert.False(t, r.Installed())
}

func TestScanExternalDeletions(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/apps/present", 0o755))
	store := inventory.NewStore(kvstore.NewMemory())
	store.SetDirectory(id("com.present", 1), "/apps/present")
	store.SetDirectory(id("com.gone", 1), "/apps/gone")
	store.FindOrCreate(id("com.never", 1))

	assert.Equal(t, 1, ScanExternalDeletions(store, fs))
	r, _ := store.Find(id("com.present", 1))
	assert.True(t, r.Installed())
	r, _ = store.Find(id("com.gone", 1))
	assert.False(t, r.Installed())
}
