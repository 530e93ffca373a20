// Package config loads and validates the tally configuration file. A missing
// file yields the defaults; every setting left empty is filled from them.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/tally/pkg/detect"
	"github.com/glorpus-work/tally/pkg/errors"
	"github.com/glorpus-work/tally/pkg/fsutil"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
	Hooks    Hooks    `yaml:"hooks,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// StateDir holds the inventory database.
	StateDir string `yaml:"state_dir,omitempty" validate:"required"`
	// InstallDir is the root below which managed directories are created.
	InstallDir string `yaml:"install_dir,omitempty" validate:"required"`
	// LegacyDir is the flat per-version directory layout of older
	// installations. Empty disables both legacy stages.
	LegacyDir string `yaml:"legacy_dir,omitempty"`
	VendorTag string `yaml:"vendor_tag,omitempty" validate:"required,alphanum"`

	// Snapshot replaces the live OS sources with a YAML snapshot.
	Snapshot string `yaml:"snapshot,omitempty"`
	// MetricsTextfile receives the metrics of each refresh when set.
	MetricsTextfile string `yaml:"metrics_textfile,omitempty"`

	// Output settings
	OutputFormat string `yaml:"output_format" validate:"oneof=text json"`
	LogLevel     string `yaml:"log_level" validate:"oneof=debug info warn error"`
	ColorOutput  bool   `yaml:"color_output"`
}

// Hooks names the scripts run on inventory changes.
type Hooks struct {
	// StatusChanged is a Tengo script, or a directory of them, run on every
	// installation directory change.
	StatusChanged string `yaml:"status_changed,omitempty"`
	// Vars are passed to every script as the vars map.
	Vars map[string]string `yaml:"vars,omitempty"`
}

// YAMLIndent is the number of spaces to use for YAML indentation.
const YAMLIndent = 2

var validate = validator.New()

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	stateDir, err := fsutil.GetStateDir()
	if err != nil {
		stateDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}
	return &Config{
		Settings: Settings{
			StateDir:     stateDir,
			InstallDir:   fsutil.GetInstallDir(),
			VendorTag:    detect.DefaultVendorTag,
			OutputFormat: "text",
			LogLevel:     "info",
			ColorOutput:  true,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes the configuration to path through a temporary file and
// a rename.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks the struct tags of all settings.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.Wrapf(errors.ErrConfigValidation, "%s: %q fails %s",
				yamlName(fe.StructField()), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return errors.Wrap(errors.ErrConfigValidation, err.Error())
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, fsutil.AppName, "config.yaml"), nil
}

// DatabaseDir returns the directory of the inventory database.
func (c *Config) DatabaseDir() string {
	return fsutil.GetDatabaseDir(c.Settings.StateDir)
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.StateDir == "" {
		c.Settings.StateDir = defaults.Settings.StateDir
	}
	if c.Settings.InstallDir == "" {
		c.Settings.InstallDir = defaults.Settings.InstallDir
	}
	if c.Settings.VendorTag == "" {
		c.Settings.VendorTag = defaults.Settings.VendorTag
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
