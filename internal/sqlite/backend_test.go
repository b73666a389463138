// Tests for backend lifecycle: attach, detach, data directory lock and
// transactional updates.
package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

// newAttachedBackend returns a backend attached to a fresh temp directory.
func newAttachedBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend:     types.BackendSQLite,
		DataDir:     t.TempDir(),
		LockTimeout: 200 * time.Millisecond,
	}))
	t.Cleanup(func() { _ = b.Detach() })
	return b
}

func mustTable(t *testing.T, b interface {
	GetTable(string) (types.Table, error)
}, name string) types.Table {
	t.Helper()
	tbl, err := b.GetTable(name)
	require.NoError(t, err)
	return tbl
}

func TestBackendLifecycle(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, dir string)
	}{
		{
			name: "attach creates data dir and database",
			check: func(t *testing.T, dir string) {
				dataDir := filepath.Join(dir, "nested", "data")
				b := NewBackend()
				require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}))
				defer b.Detach()

				_, err := os.Stat(filepath.Join(dataDir, dbFileName))
				assert.NoError(t, err)
				assert.Equal(t, dataDir, b.DataDir())
			},
		},
		{
			name: "attach twice returns ErrAlreadyAttached",
			check: func(t *testing.T, dir string) {
				b := NewBackend()
				cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}
				require.NoError(t, b.Attach(cfg))
				defer b.Detach()
				assert.ErrorIs(t, b.Attach(cfg), types.ErrAlreadyAttached)
			},
		},
		{
			name: "attach validates config",
			check: func(t *testing.T, dir string) {
				b := NewBackend()
				assert.ErrorIs(t, b.Attach(types.Config{Backend: "", DataDir: dir}), types.ErrBackendEmpty)
				assert.ErrorIs(t, b.Attach(types.Config{Backend: "postgres", DataDir: dir}), types.ErrBackendUnknown)
			},
		},
		{
			name: "detach is idempotent and detaches tables",
			check: func(t *testing.T, dir string) {
				b := NewBackend()
				require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
				tbl := mustTable(t, b, types.ClustersTable)

				require.NoError(t, b.Detach())
				require.NoError(t, b.Detach())

				_, err := b.GetTable(types.ClustersTable)
				assert.ErrorIs(t, err, types.ErrStoreDetached)
				_, err = tbl.Fetch(nil)
				assert.ErrorIs(t, err, types.ErrStoreDetached)
				_, err = tbl.Set("", &types.Cluster{Name: "x"})
				assert.ErrorIs(t, err, types.ErrStoreDetached)
				assert.ErrorIs(t, b.Update(func(types.Tx) error { return nil }), types.ErrStoreDetached)
				assert.Equal(t, "", b.DataDir())
			},
		},
		{
			name: "unknown table returns ErrTableNotFound",
			check: func(t *testing.T, dir string) {
				b := NewBackend()
				require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
				defer b.Detach()
				_, err := b.GetTable("tags")
				assert.ErrorIs(t, err, types.ErrTableNotFound)
			},
		},
		{
			name: "data survives detach and reattach",
			check: func(t *testing.T, dir string) {
				cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}
				b := NewBackend()
				require.NoError(t, b.Attach(cfg))
				id, err := mustTable(t, b, types.ClustersTable).Set("", &types.Cluster{Name: "Books"})
				require.NoError(t, err)
				require.NoError(t, b.Detach())

				b2 := NewBackend()
				require.NoError(t, b2.Attach(cfg))
				defer b2.Detach()
				got, err := mustTable(t, b2, types.ClustersTable).Get(id)
				require.NoError(t, err)
				assert.Equal(t, "Books", got.(*types.Cluster).Name)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, t.TempDir())
		})
	}
}

func TestBackendDataDirLock(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir, LockTimeout: 150 * time.Millisecond}

	first := NewBackend()
	require.NoError(t, first.Attach(cfg))

	second := NewBackend()
	err := second.Attach(cfg)
	assert.ErrorIs(t, err, types.ErrStoreLocked)

	require.NoError(t, first.Detach())
	require.NoError(t, second.Attach(cfg), "lock is released on detach")
	require.NoError(t, second.Detach())
}

func TestBackendUpdate(t *testing.T) {
	t.Run("commits all writes together", func(t *testing.T) {
		b := newAttachedBackend(t)
		var clusterID string
		err := b.Update(func(tx types.Tx) error {
			ct, err := tx.GetTable(types.ClustersTable)
			if err != nil {
				return err
			}
			clusterID, err = ct.Set("", &types.Cluster{Name: "Books"})
			if err != nil {
				return err
			}
			ft, err := tx.GetTable(types.FieldDefinitionsTable)
			if err != nil {
				return err
			}
			_, err = ft.Set("", &types.FieldDefinition{ClusterID: clusterID, FieldName: "Title"})
			return err
		})
		require.NoError(t, err)

		fields, err := mustTable(t, b, types.FieldDefinitionsTable).Fetch(types.Filter{types.FilterClusterID: clusterID})
		require.NoError(t, err)
		assert.Len(t, fields, 1)
	})

	t.Run("rolls back every write on error", func(t *testing.T) {
		b := newAttachedBackend(t)
		boom := errors.New("boom")
		err := b.Update(func(tx types.Tx) error {
			ct, err := tx.GetTable(types.ClustersTable)
			if err != nil {
				return err
			}
			if _, err := ct.Set("", &types.Cluster{Name: "Doomed"}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		all, err := mustTable(t, b, types.ClustersTable).Fetch(nil)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("rolls back when a table write fails", func(t *testing.T) {
		b := newAttachedBackend(t)
		err := b.Update(func(tx types.Tx) error {
			ct, _ := tx.GetTable(types.ClustersTable)
			if _, err := ct.Set("", &types.Cluster{Name: "Books"}); err != nil {
				return err
			}
			ft, _ := tx.GetTable(types.FieldDefinitionsTable)
			_, err := ft.Set("", &types.FieldDefinition{ClusterID: "missing", FieldName: "Title"})
			return err
		})
		assert.ErrorIs(t, err, types.ErrNotFound)

		all, err := mustTable(t, b, types.ClustersTable).Fetch(nil)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("unknown table inside transaction", func(t *testing.T) {
		b := newAttachedBackend(t)
		err := b.Update(func(tx types.Tx) error {
			_, err := tx.GetTable("nope")
			return err
		})
		assert.ErrorIs(t, err, types.ErrTableNotFound)
	})
}
