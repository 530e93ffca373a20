package detect

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/tally/pkg/catalog"
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/job"
	"github.com/glorpus-work/tally/pkg/kvstore"
	"github.com/glorpus-work/tally/pkg/model"
	"github.com/glorpus-work/tally/pkg/platform"
	"github.com/glorpus-work/tally/pkg/source"
)

type fixture struct {
	env   *Env
	kv    *kvstore.Memory
	reg   *source.MemoryRegistry
	msi   *source.MemoryMSI
	fs    afero.Fs
	repo  *catalog.KVRepository
	store *inventory.Store
	plat  *platform.Static
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := kvstore.NewMemory()
	f := &fixture{
		kv:    kv,
		reg:   source.NewMemoryRegistry(),
		msi:   source.NewMemoryMSI(),
		fs:    afero.NewMemMapFs(),
		repo:  catalog.NewKVRepository(kv),
		store: inventory.NewStore(kv),
		plat: &platform.Static{
			OS:      "windows",
			Version: "10.0.19045",
			RootDir: `C:\Windows`,
			Bits64:  true,
		},
	}
	require.NoError(t, f.fs.MkdirAll(`C:\Windows`, 0o755))
	f.env = &Env{
		Catalog:    f.repo,
		Registry:   f.reg,
		MSI:        f.msi,
		Platform:   f.plat,
		FS:         f.fs,
		InstallDir: "/opt",
		VendorTag:  "Tally",
	}
	return f
}

func (f *fixture) mkdir(t *testing.T, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, f.fs.MkdirAll(d, 0o755))
	}
}

func (f *fixture) run(t *testing.T, d Detector) Report {
	t.Helper()
	rep, err := d.Detect(job.New(context.Background(), job.Hooks{}), f.store)
	require.NoError(t, err)
	return rep
}

func (f *fixture) record(t *testing.T, pkg, version string) inventory.Record {
	t.Helper()
	r, ok := f.store.Find(model.NewIdentity(pkg, model.MustParseVersion(version)))
	require.True(t, ok, "record %s %s", pkg, version)
	return r
}

func ident(pkg, version string) model.Identity {
	return model.NewIdentity(pkg, model.MustParseVersion(version))
}
