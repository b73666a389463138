package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend     string        `json:"backend" yaml:"backend"`
	DataDir     string        `json:"data_dir" yaml:"data_dir"`
	LockTimeout time.Duration `json:"lock_timeout" yaml:"lock_timeout"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// DefaultLockTimeout bounds how long Attach waits for the data directory lock.
const DefaultLockTimeout = 3 * time.Second

// Config validation errors.
var (
	ErrBackendEmpty        = errors.New("backend must not be empty")
	ErrBackendUnknown      = errors.New("unknown backend")
	ErrLockTimeoutNegative = errors.New("lock timeout must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.LockTimeout < 0 {
		return ErrLockTimeoutNegative
	}
	return nil
}

// GetLockTimeout returns the configured lock timeout, or DefaultLockTimeout
// when unset.
func (c Config) GetLockTimeout() time.Duration {
	if c.LockTimeout == 0 {
		return DefaultLockTimeout
	}
	return c.LockTimeout
}
