package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/fsutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	assert.Equal(t, "Tally", cfg.Settings.VendorTag)
	assert.NotEmpty(t, cfg.Settings.StateDir)
	assert.NotEmpty(t, cfg.Settings.InstallDir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  state_dir: /var/lib/tally
  legacy_dir: /opt/legacy
  log_level: debug
  snapshot: /tmp/host.yaml
hooks:
  status_changed: /etc/tally/hooks
  vars:
    site: lab`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/var/lib/tally", cfg.Settings.StateDir)
	assert.Equal(t, "/opt/legacy", cfg.Settings.LegacyDir)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, "/tmp/host.yaml", cfg.Settings.Snapshot)
	assert.Equal(t, "/etc/tally/hooks", cfg.Hooks.StatusChanged)
	assert.Equal(t, map[string]string{"site": "lab"}, cfg.Hooks.Vars)

	// defaults fill the rest
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	assert.Equal(t, "Tally", cfg.Settings.VendorTag)
	assert.Equal(t, filepath.Join("/var/lib/tally", "db"), cfg.DatabaseDir())
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestLoadConfigFromReader_Errors(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("settings: [: broken"))
	assert.ErrorIs(t, err, errors.ErrConfigParse)

	_, err = LoadConfigFromReader(strings.NewReader("settings:\n  log_level: loud\n"))
	require.ErrorIs(t, err, errors.ErrConfigValidation)
	assert.Contains(t, err.Error(), "log_level")
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.MetricsTextfile = "/var/lib/node_exporter/tally.prom"

	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.SaveConfig(configPath))

	_, err := os.Stat(configPath + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	assert.ErrorIs(t, cfg.SaveConfig(""), errors.ErrEmptyConfigPath)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{name: "valid config", modify: func(*Config) {}},
		{
			name:   "invalid output format",
			modify: func(c *Config) { c.Settings.OutputFormat = "xml" },
			errMsg: "output_format",
		},
		{
			name:   "invalid log level",
			modify: func(c *Config) { c.Settings.LogLevel = "trace" },
			errMsg: "log_level",
		},
		{
			name:   "vendor tag with separator",
			modify: func(c *Config) { c.Settings.VendorTag = "my/vendor" },
			errMsg: "vendor_tag",
		},
		{
			name:   "missing state dir",
			modify: func(c *Config) { c.Settings.StateDir = "" },
			errMsg: "state_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errors.ErrConfigValidation)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), errors.ErrConfigValidation)
}

func TestSetAndGetValue(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.SetValue("legacy_dir", "/opt/old"))
	require.NoError(t, cfg.SetValue("color_output", "false"))
	assert.Equal(t, "/opt/old", cfg.Settings.LegacyDir)
	assert.False(t, cfg.Settings.ColorOutput)

	v, err := cfg.GetValue("color_output")
	require.NoError(t, err)
	assert.Equal(t, "false", v)

	v, err = cfg.GetValue("vendor_tag")
	require.NoError(t, err)
	assert.Equal(t, "Tally", v)

	assert.Error(t, cfg.SetValue("color_output", "maybe"))
	assert.ErrorIs(t, cfg.SetValue("cache_dir", "/x"), errors.ErrUnknownConfigKey)
	_, err = cfg.GetValue("cache_dir")
	assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)
}

func TestToMap(t *testing.T) {
	m := DefaultConfig().ToMap()
	for _, key := range []string{"state_dir", "install_dir", "legacy_dir", "vendor_tag", "snapshot",
		"metrics_textfile", "output_format", "log_level", "color_output"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "true", m["color_output"])
}
