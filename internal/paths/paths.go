// Package paths resolves where clusters keeps its configuration and data.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appDirName is the directory created under the platform config and data
// roots.
const appDirName = "clusters"

// DataDirName is the CWD-relative data directory used when nothing else is
// configured.
const DataDirName = ".clusters"

// ConfigFileName is the configuration file looked up in the config directory.
const ConfigFileName = "config.yaml"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "CLUSTERS_CONFIG_DIR"
	EnvDataDir   = "CLUSTERS_DATA_DIR"
)

// platform holds the OS lookups, swapped out in tests.
var platform = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// xdgRoot returns $env, or home/fallback... when the variable is unset.
func xdgRoot(env string, fallback ...string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/clusters (fallback ~/.config/clusters)
// macOS:   ~/Library/Application Support/clusters
// Windows: %APPDATA%/clusters
func DefaultConfigDir() (string, error) {
	var root string
	var err error
	if platform.goos == "linux" {
		root, err = xdgRoot("XDG_CONFIG_HOME", ".config")
	} else {
		root, err = platform.userConfigDir()
	}
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appDirName), nil
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/clusters (fallback ~/.local/share/clusters)
// macOS and Windows: same as DefaultConfigDir.
func DefaultDataDir() (string, error) {
	if platform.goos != "linux" {
		return DefaultConfigDir()
	}
	root, err := xdgRoot("XDG_DATA_HOME", ".local", "share")
	if err != nil {
		return "", err
	}
	return filepath.Join(root, appDirName), nil
}

// ResolveConfigDir picks the configuration directory: flag, then
// CLUSTERS_CONFIG_DIR, then DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir picks the data directory: flag, then the configured value,
// then CLUSTERS_DATA_DIR, then ./.clusters in the working directory.
func ResolveDataDir(flag, configured string) (string, error) {
	for _, candidate := range []string{flag, configured, os.Getenv(EnvDataDir)} {
		if candidate != "" {
			return filepath.Abs(candidate)
		}
	}
	cwd, err := platform.getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DataDirName), nil
}
