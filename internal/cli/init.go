package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/clusters/internal/paths"
	"github.com/mesh-intelligence/clusters/pkg/sqlite"
	"github.com/mesh-intelligence/clusters/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend     string `yaml:"backend"`
	DataDir     string `yaml:"data_dir,omitempty"`
	LockTimeout string `yaml:"lock_timeout,omitempty"`
	LogLevel    string `yaml:"log_level,omitempty"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize clusters storage",
		Long:  "Create the configuration and data directories, write a default config.yaml\nif none exists, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	cfg, err := a.storeConfig()
	if err != nil {
		return userError(err)
	}

	if err := os.MkdirAll(a.configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}
	configPath := filepath.Join(a.configDir, paths.ConfigFileName)
	written, err := writeConfigIfMissing(configPath, cfg)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return sysError(fmt.Errorf("initialize storage: %w", err))
	}
	if err := backend.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	out := cmd.OutOrStdout()
	if a.jsonMode {
		return writeJSON(out, map[string]any{
			"config_file":    configPath,
			"config_written": written,
			"data_dir":       cfg.DataDir,
		})
	}
	if written {
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	}
	fmt.Fprintf(out, "Initialized clusters storage in %s\n", cfg.DataDir)
	return nil
}

// writeConfigIfMissing creates config.yaml from cfg unless the file already
// exists. It reports whether the file was written.
func writeConfigIfMissing(path string, cfg types.Config) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&configFile{
		Backend:     cfg.Backend,
		DataDir:     cfg.DataDir,
		LockTimeout: cfg.GetLockTimeout().String(),
		LogLevel:    defaultLogLevel,
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
