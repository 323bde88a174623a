// Package paths provides sudo-aware path resolution for stampwatch.
//
// When running with sudo, these functions resolve paths to the original
// user's directories (via SUDO_USER) instead of root's. STAMPWATCH_HOME
// overrides the application directory entirely.
package paths

import (
	"os"
	"os/user"
	"path/filepath"
)

// HomeEnv names the environment variable that overrides AppDir.
const HomeEnv = "STAMPWATCH_HOME"

// UserHomeDir returns the home directory of the actual user.
// If running with sudo, returns the SUDO_USER's home directory, not root's.
func UserHomeDir() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		u, err := user.Lookup(sudoUser)
		if err == nil {
			return u.HomeDir, nil
		}
	}
	return os.UserHomeDir()
}

// UserConfigDir returns ~/.config of the actual user.
func UserConfigDir() (string, error) {
	homeDir, err := UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config"), nil
}

// AppDir returns the stampwatch directory, ~/.config/stampwatch unless
// STAMPWATCH_HOME is set.
func AppDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "stampwatch"), nil
}

func inAppDir(elem ...string) (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// DatabasePath returns <appdir>/stampwatch.db.
func DatabasePath() (string, error) { return inAppDir("stampwatch.db") }

// ConfigPath returns <appdir>/config.toml.
func ConfigPath() (string, error) { return inAppDir("config.toml") }

// PlansDir returns <appdir>/plans.
func PlansDir() (string, error) { return inAppDir("plans") }

// ActivityDir returns <appdir>/activity.
func ActivityDir() (string, error) { return inAppDir("activity") }

// LogPath returns <appdir>/logs/stampwatch.log.
func LogPath() (string, error) { return inAppDir("logs", "stampwatch.log") }

// ActualUser returns the actual username (not root when using sudo).
func ActualUser() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" && sudoUser != "root" {
		return sudoUser
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
