package state

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigDirName is the directory for cdl configuration under the XDG
	// config home, and for cloned repositories under the temp dir.
	ConfigDirName = "cdl"

	// ConfigFileName is the main configuration file.
	ConfigFileName = "config.yaml"

	lockSuffix    = ".lock"
	corruptSuffix = ".corrupted"
)

// GetConfigDir returns the path to the cdl configuration directory.
// It honors XDG_CONFIG_HOME and falls back to ~/.config/cdl/.
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configHome, ConfigDirName), nil
}

// GetConfigPath returns the path to the main configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// DefaultRepoCacheDir is where repositories are cloned for building.
func DefaultRepoCacheDir() string {
	return filepath.Join(os.TempDir(), ConfigDirName)
}

// EnsureDir ensures that a directory exists, creating it if necessary.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory %s: %w", path, err)
	}
	return nil
}
