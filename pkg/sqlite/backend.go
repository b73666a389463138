// Package sqlite provides the public API for the SQLite clusters backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/clusters/internal/sqlite"
	"github.com/mesh-intelligence/clusters/pkg/types"
)

// ImportStats counts the rows each table gained from an Import.
type ImportStats = sqlite.ImportStats

// Backend is a types.Store kept in one SQLite file, with JSONL export and
// import of its whole contents.
type Backend interface {
	types.Store

	// DataDir returns the attached data directory, or "" when detached.
	DataDir() string

	// Export writes clusters.jsonl, field_definitions.jsonl and items.jsonl
	// into dir.
	Export(dir string) error

	// Import loads the files Export writes, skipping records that already
	// exist or do not fit the schema.
	Import(dir string) (ImportStats, error)
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".clusters",
//	})
//	defer backend.Detach()
func NewBackend() Backend {
	return sqlite.NewBackend()
}
