package sqlite

import (
	"database/sql"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

// tableBase is shared by every table accessor. A table obtained from
// Backend.GetTable has a nil tx and commits each write on its own; one
// obtained inside Backend.Update runs on that transaction and takes no locks,
// since Update already holds the backend lock.
type tableBase struct {
	backend *Backend
	tx      *sql.Tx
}

// newTable returns the accessor for name. tx may be nil.
func newTable(b *Backend, tx *sql.Tx, name string) (types.Table, error) {
	base := tableBase{backend: b, tx: tx}
	switch name {
	case types.ClustersTable:
		return &clustersTable{base}, nil
	case types.FieldDefinitionsTable:
		return &fieldDefinitionsTable{base}, nil
	case types.ItemsTable:
		return &itemsTable{base}, nil
	default:
		return nil, types.ErrTableNotFound
	}
}

// read runs fn against the transaction, or against the database under a read
// lock.
func (t *tableBase) read(fn func(q querier) error) error {
	if t.tx != nil {
		return fn(t.tx)
	}
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return types.ErrStoreDetached
	}
	return fn(b.db)
}

// write runs fn against the transaction, or in a fresh transaction under the
// write lock.
func (t *tableBase) write(fn func(q querier) error) error {
	if t.tx != nil {
		return fn(t.tx)
	}
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrStoreDetached
	}
	return b.inTx(func(tx *sql.Tx) error { return fn(tx) })
}

// txView implements types.Tx for Backend.Update.
type txView struct {
	backend *Backend
	tx      *sql.Tx
}

func (v *txView) GetTable(name string) (types.Table, error) {
	return newTable(v.backend, v.tx, name)
}
