package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the name of the application used in paths.
const AppName = "tally"

// GetStateDir returns the platform-specific directory holding tally's state.
// On Windows: %ProgramData%\tally
// On Linux: $XDG_STATE_HOME/tally or ~/.local/state/tally
// On macOS: ~/Library/Application Support/tally
func GetStateDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		pd := os.Getenv("ProgramData")
		if pd == "" {
			return "", errors.New("ProgramData environment variable not set")
		}
		return filepath.Join(pd, AppName), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", AppName), nil
	default:
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "state", AppName), nil
	}
}

// GetInstallDir returns the default root under which managed packages live.
// On Windows: %ProgramFiles%
// Elsewhere: /opt
func GetInstallDir() string {
	if runtime.GOOS == "windows" {
		if pf := os.Getenv("ProgramFiles"); pf != "" {
			return pf
		}
		return `C:\Program Files`
	}
	return "/opt"
}

// GetDatabaseDir returns the badger directory below stateDir.
func GetDatabaseDir(stateDir string) string {
	return filepath.Join(stateDir, "db")
}
