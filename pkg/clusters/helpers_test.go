package clusters

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clusters/pkg/sqlite"
	"github.com/mesh-intelligence/clusters/pkg/types"
)

// newStore returns an attached SQLite store in a temp directory.
func newStore(t *testing.T) types.Store {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

// failingStore runs every Update to completion and then fails it, so the
// transaction is rolled back after all of its writes were attempted.
type failingStore struct {
	types.Store
	err error
}

func (s failingStore) Update(fn func(tx types.Tx) error) error {
	return s.Store.Update(func(tx types.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		return s.err
	})
}

// putItem stores an item with the given raw values, bypassing the editor.
func putItem(t *testing.T, store types.Store, clusterID string, values types.FieldValues) *types.Item {
	t.Helper()
	item, err := types.NewItem(clusterID, values)
	require.NoError(t, err)
	tbl, err := store.GetTable(types.ItemsTable)
	require.NoError(t, err)
	_, err = tbl.Set("", item)
	require.NoError(t, err)
	return item
}

func mustCreate(t *testing.T, repo *Repository, name string, fields ...string) *types.Cluster {
	t.Helper()
	c, err := repo.CreateCluster(name, fields)
	require.NoError(t, err)
	return c
}

func mustFields(t *testing.T, repo *Repository, clusterID string) []*types.FieldDefinition {
	t.Helper()
	defs, err := repo.Fields(clusterID)
	require.NoError(t, err)
	return defs
}
