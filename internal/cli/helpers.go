package cli

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/catalog"
	"github.com/glorpus-work/tally/pkg/config"
	"github.com/glorpus-work/tally/pkg/detect"
	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/inventory"
	"github.com/glorpus-work/tally/pkg/kvstore"
	"github.com/glorpus-work/tally/pkg/platform"
	"github.com/glorpus-work/tally/pkg/source"
)

// These variables will be set by the main package
var (
	ConfigPath   *string
	Verbose      *bool
	NoColor      *bool
	OutputFormat *string
)

// loadConfig reads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if NoColor != nil && *NoColor {
		cfg.Settings.ColorOutput = false
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	setupLogging(cfg)
	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// session is an opened inventory database.
type session struct {
	kv      *kvstore.Badger
	store   *inventory.Store
	catalog *catalog.KVRepository
}

// openSession opens the database below the state directory and loads the
// persisted records.
func openSession(cfg *config.Config) (*session, error) {
	kv, err := kvstore.OpenBadger(kvstore.BadgerConfig{
		Path:       cfg.DatabaseDir(),
		SyncWrites: true,
		Verbose:    cfg.Settings.LogLevel == "debug",
	})
	if err != nil {
		return nil, err
	}
	s := &session{
		kv:      kv,
		store:   inventory.NewStore(kv),
		catalog: catalog.NewKVRepository(kv),
	}
	if err := s.store.Load(); err != nil {
		_ = kv.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() error {
	return s.kv.Close()
}

// buildEnv assembles the evidence sources: the live OS, or the snapshot
// named in the settings.
func buildEnv(cfg *config.Config, repo catalog.Repository, fs afero.Fs) (*detect.Env, error) {
	env := &detect.Env{
		Catalog:    repo,
		FS:         fs,
		InstallDir: cfg.Settings.InstallDir,
		VendorTag:  cfg.Settings.VendorTag,
	}

	if cfg.Settings.Snapshot == "" {
		reg, msi, err := source.Live()
		if err != nil {
			return nil, err
		}
		env.Registry, env.MSI, env.Platform = reg, msi, platform.NewHost()
		return env, nil
	}

	snap, err := source.LoadSnapshot(fs, cfg.Settings.Snapshot)
	if err != nil {
		return nil, err
	}
	reg, msi, err := snap.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot %s", cfg.Settings.Snapshot)
	}
	env.Registry, env.MSI = reg, msi
	env.Platform = &platform.Static{
		OS:      snap.Platform.Name,
		Version: snap.Platform.OSVersion,
		RootDir: snap.Platform.Root,
		Bits64:  snap.Platform.Is64Bit,
		Files:   snap.Platform.FileVersions,
	}
	logger.Debug("using source snapshot", logger.Fields{"path": cfg.Settings.Snapshot})
	return env, nil
}
