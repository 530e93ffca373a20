package cli

import (
	"github.com/glorpus-work/tally/internal/logger"
	"github.com/glorpus-work/tally/pkg/config"
)

// setupLogging applies the configured level and format to the global logger.
func setupLogging(cfg *config.Config) {
	format := logger.FormatText
	if cfg.Settings.OutputFormat == string(logger.FormatJSON) {
		format = logger.FormatJSON
	}
	logger.InitLogger(cfg.Settings.LogLevel, format)
}
