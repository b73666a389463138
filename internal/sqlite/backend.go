// Package sqlite implements the SQLite storage backend for clusters.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

// File names inside DataDir.
const (
	dbFileName   = "clusters.db"
	lockFileName = "clusters.lock"
)

// lockRetryInterval is how often Attach retries a held data directory lock.
const lockRetryInterval = 100 * time.Millisecond

// Backend implements the Store interface on a single SQLite database file.
// The data directory is owned by one attached Backend at a time; a file lock
// keeps other processes out for as long as the backend stays attached.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	lock     *flock.Flock
	logger   *slog.Logger
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{logger: slog.Default().With("component", "sqlite")}
}

// GetTable returns a Table interface for the specified table name.
// Returns ErrTableNotFound if the table name is not recognized.
// Returns ErrStoreDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	return newTable(b, nil, name)
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, takes the data directory lock, opens
// the database and applies the schema.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	lock, err := acquireLock(filepath.Join(dataDir, lockFileName), config.GetLockTimeout())
	if err != nil {
		return err
	}

	db, err := openDB(filepath.Join(dataDir, dbFileName))
	if err != nil {
		_ = lock.Unlock()
		return err
	}

	if err := applySchema(db); err != nil {
		db.Close()
		_ = lock.Unlock()
		return err
	}

	b.db = db
	b.lock = lock
	b.config = config
	b.config.DataDir = dataDir
	b.attached = true

	b.logger.Debug("attached", "data_dir", dataDir)
	return nil
}

// Detach closes the database and releases the data directory lock.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	var closeErr error
	if b.db != nil {
		closeErr = b.db.Close()
		b.db = nil
	}
	if b.lock != nil {
		if err := b.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("release lock: %w", err)
		}
		b.lock = nil
	}
	b.attached = false

	b.logger.Debug("detached", "data_dir", b.config.DataDir)
	return closeErr
}

// Update runs fn inside one SQLite transaction. See types.Store.
func (b *Backend) Update(fn func(tx types.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	err := b.inTx(func(tx *sql.Tx) error {
		return fn(&txView{backend: b, tx: tx})
	})
	if err != nil {
		b.logger.Debug("update rolled back", "err", err)
		return err
	}
	b.logger.Debug("update committed")
	return nil
}

// DataDir returns the directory the backend is attached to, or "" when
// detached.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ""
	}
	return b.config.DataDir
}

// inTx runs fn in a transaction on b.db and commits when fn succeeds.
// The caller must hold b.mu.
func (b *Backend) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// acquireLock takes the exclusive data directory lock, waiting up to timeout.
func acquireLock(path string, timeout time.Duration) (*flock.Flock, error) {
	lock := flock.New(path)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, lockRetryInterval)
	if err != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, types.ErrStoreLocked
	}
	return lock, nil
}

// openDB opens the database with foreign keys enforced. A single connection
// keeps per-connection pragmas in effect for every statement.
func openDB(path string) (*sql.DB, error) {
	dsn := "file:" + filepath.ToSlash(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
