// Package errors holds the sentinel errors shared across tally packages together
// with small helpers for wrapping them with context.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Common error types.
var (
	// Inventory errors.
	ErrParse              = fmt.Errorf("parse error")
	ErrInvalidPackageName = fmt.Errorf("invalid package name")
	ErrSourceUnavailable  = fmt.Errorf("evidence source unavailable")
	ErrValueNotFound      = fmt.Errorf("value not found")
	ErrPersistenceWrite   = fmt.Errorf("persistence write failed")
	ErrCancelled          = fmt.Errorf("operation cancelled")
	ErrStoreUnreadable    = fmt.Errorf("persisted store is unreadable")
	ErrInvalidEnv         = fmt.Errorf("incomplete detection environment")

	// Key/value store errors.
	ErrKeyNotFound = fmt.Errorf("key not found")
	ErrInvalidKey  = fmt.Errorf("invalid key")

	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
