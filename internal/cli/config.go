package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/config"
	"github.com/glorpus-work/tally/pkg/errors"
)

const hookStatusChangedKey = "hooks.status_changed"

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the tally configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:     "show [KEY...]",
			Aliases: []string{"get"},
			Short:   "Print all settings, or the values of the given keys",
			RunE:    runConfigShow,
		},
		&cobra.Command{
			Use:   "set KEY=VALUE...",
			Short: "Change one or more settings",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runConfigSet,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), getConfigPath())
				return err
			},
		},
		newConfigInitCmd(),
	)
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := getConfigPath()
			if ok, _ := afero.Exists(afero.NewOsFs(), path); ok && !force {
				return errors.Wrap(errors.ErrConfigFileExists, path)
			}
			if err := config.DefaultConfig().SaveConfig(path); err != nil {
				return err
			}
			logger.Success("Configuration file created", logger.Fields{"path": path})
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}

// settingsOf flattens settings and hooks into one key space.
func settingsOf(cfg *config.Config) map[string]string {
	m := cfg.ToMap()
	m[hookStatusChangedKey] = cfg.Hooks.StatusChanged
	return m
}

func runConfigShow(cmd *cobra.Command, keys []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	all := settingsOf(cfg)

	selected := all
	if len(keys) > 0 {
		selected = make(map[string]string, len(keys))
		for _, k := range keys {
			v, ok := all[k]
			if !ok {
				return errors.Wrap(errors.ErrUnknownConfigKey, k)
			}
			selected[k] = v
		}
	}

	w := cmd.OutOrStdout()
	switch {
	case cfg.Settings.OutputFormat == "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(selected)
	case len(keys) == 1:
		_, err := fmt.Fprintln(w, selected[keys[0]])
		return err
	}

	names := make([]string, 0, len(selected))
	for k := range selected {
		names = append(names, k)
	}
	sort.Strings(names)

	key := color.New(color.FgCyan).SprintFunc()
	tw := tabwriter.NewWriter(w, 0, 0, TabWidth, ' ', 0)
	for _, k := range names {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", key(k), selected[k])
	}
	return tw.Flush()
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("expected KEY=VALUE, got %q", arg)
		}
		if k == hookStatusChangedKey {
			cfg.Hooks.StatusChanged = v
		} else if err := cfg.SetValue(k, v); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.SaveConfig(getConfigPath()); err != nil {
		return err
	}
	logger.Success("Configuration updated", logger.Fields{"changes": len(args)})
	return nil
}
