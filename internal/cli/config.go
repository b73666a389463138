// Config loading for the clusters CLI.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/clusters/internal/paths"
	"github.com/mesh-intelligence/clusters/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyLockTimeout = "lock_timeout"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFile     = "log_file"

	defaultLogLevel = "warn"
)

// loadConfig reads config.yaml from configDir with Viper. A missing file or
// directory leaves every key at its default. CLUSTERS_LOG_LEVEL overrides
// the log level from the file.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyLockTimeout, types.DefaultLockTimeout)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.BindEnv(cfgKeyLogLevel, "CLUSTERS_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config %s: %w", filepath.Join(configDir, paths.ConfigFileName), err)
	}
	return v, nil
}

// storeConfig builds the backend configuration from the loaded config and
// the --data-dir flag.
func (a *app) storeConfig() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.dataDir, a.cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	timeout := a.cfg.GetDuration(cfgKeyLockTimeout)
	if timeout < 0 {
		timeout = time.Duration(0)
	}
	cfg := types.Config{
		Backend:     strings.ToLower(a.cfg.GetString(cfgKeyBackend)),
		DataDir:     dataDir,
		LockTimeout: timeout,
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
