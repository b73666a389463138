package types

import "errors"

// Store defines the interface for backend-agnostic persistence of clusters,
// field definitions and items. Callers attach to a backend, access tables by
// name, group writes into atomic units with Update, and detach when done.
type Store interface {
	// GetTable returns the Table for the given name. Each write made through
	// a table obtained here is committed on its own.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Update runs fn inside a single transaction. Every table obtained from
	// tx shares that transaction: either all writes made in fn are persisted
	// or none are. A non-nil error from fn rolls the transaction back and is
	// returned unchanged. Tables from tx must not be used after fn returns.
	Update(fn func(tx Tx) error) error

	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached if
	// called while already attached and ErrStoreLocked if another process
	// owns the data directory.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations on tables return ErrStoreDetached.
	Detach() error
}

// Tx gives access to tables bound to one open transaction.
type Tx interface {
	GetTable(name string) (Table, error)
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrStoreLocked     = errors.New("data directory is locked by another process")
	ErrTableNotFound   = errors.New("table not found")
)
