package cli

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/clusters/pkg/sqlite"
)

// withBackend attaches a SQLite backend for the duration of fn.
func (a *app) withBackend(fn func(b sqlite.Backend) error) error {
	cfg, err := a.storeConfig()
	if err != nil {
		return userError(err)
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return sysError(fmt.Errorf("attach backend: %w", err))
	}
	defer func() {
		if err := backend.Detach(); err != nil {
			slog.Warn("detach backend", "err", err)
		}
	}()

	return fn(backend)
}
