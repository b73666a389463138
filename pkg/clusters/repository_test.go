package clusters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

func TestCreateCluster(t *testing.T) {
	t.Run("books example drops blank field names", func(t *testing.T) {
		repo := NewRepository(newStore(t))

		c, err := repo.CreateCluster("Books", []string{"Title", "Author", ""})
		require.NoError(t, err)
		assert.Equal(t, "Books", c.Name)
		assert.NotEmpty(t, c.ClusterID)

		defs := mustFields(t, repo, c.ClusterID)
		require.Len(t, defs, 2)
		assert.Equal(t, []string{"Title", "Author"}, types.FieldNames(defs))
		assert.Equal(t, 0, defs[0].Order)
		assert.Equal(t, 1, defs[1].Order)
	})

	t.Run("trims name and field names", func(t *testing.T) {
		repo := NewRepository(newStore(t))
		c, err := repo.CreateCluster("  Films \n", []string{" Title ", "   ", "\tYear"})
		require.NoError(t, err)
		assert.Equal(t, "Films", c.Name)
		assert.Equal(t, []string{"Title", "Year"}, types.FieldNames(mustFields(t, repo, c.ClusterID)))
	})

	tests := []struct {
		name    string
		cluster string
		fields  []string
		want    error
	}{
		{"blank name", "   ", []string{"Title"}, types.ErrInvalidName},
		{"no fields", "Books", nil, types.ErrNoFields},
		{"only blank fields", "Books", []string{"", "  "}, types.ErrNoFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewRepository(newStore(t))
			_, err := repo.CreateCluster(tt.cluster, tt.fields)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, types.IsValidation(err))

			list, err := repo.ListClusters()
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}

	t.Run("storage failure is surfaced and rolled back", func(t *testing.T) {
		store := newStore(t)
		boom := errors.New("disk full")
		repo := NewRepository(failingStore{Store: store, err: boom})

		_, err := repo.CreateCluster("Books", []string{"Title"})
		var se *types.StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "create cluster", se.Op)
		assert.ErrorIs(t, err, boom)

		list, err := NewRepository(store).ListClusters()
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestListClustersNewestFirst(t *testing.T) {
	repo := NewRepository(newStore(t))
	first := mustCreate(t, repo, "First", "A")
	second := mustCreate(t, repo, "Second", "A")
	third := mustCreate(t, repo, "Third", "A")

	list, err := repo.ListClusters()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, third.ClusterID, list[0].ClusterID)
	assert.Equal(t, second.ClusterID, list[1].ClusterID)
	assert.Equal(t, first.ClusterID, list[2].ClusterID)
}

func TestDeleteCluster(t *testing.T) {
	t.Run("removes fields and items with the cluster", func(t *testing.T) {
		store := newStore(t)
		repo := NewRepository(store)
		books := mustCreate(t, repo, "Books", "Title", "Author")
		films := mustCreate(t, repo, "Films", "Title")
		for _, title := range []string{"Dune", "Emma", "Ulysses"} {
			putItem(t, store, books.ClusterID, types.FieldValues{"Title": title})
		}
		putItem(t, store, films.ClusterID, types.FieldValues{"Title": "Alien"})

		require.NoError(t, repo.DeleteCluster(books.ClusterID))

		_, err := repo.GetCluster(books.ClusterID)
		assert.ErrorIs(t, err, types.ErrNotFound)

		allFields, err := fetchFields(store, "")
		require.NoError(t, err)
		allItems, err := fetchItems(store, "")
		require.NoError(t, err)
		for _, f := range allFields {
			assert.Equal(t, films.ClusterID, f.ClusterID, "orphaned field definition")
		}
		for _, it := range allItems {
			assert.Equal(t, films.ClusterID, it.ClusterID, "orphaned item")
		}
		assert.Len(t, allFields, 1)
		assert.Len(t, allItems, 1)
	})

	t.Run("unknown cluster", func(t *testing.T) {
		repo := NewRepository(newStore(t))
		err := repo.DeleteCluster("missing")
		assert.ErrorIs(t, err, types.ErrNotFound)
		var se *types.StorageError
		assert.False(t, errors.As(err, &se))
	})
}

func TestSummaries(t *testing.T) {
	store := newStore(t)
	repo := NewRepository(store)
	books := mustCreate(t, repo, "Books", "Title", "Author", "Year")
	films := mustCreate(t, repo, "Films", "Title")
	putItem(t, store, books.ClusterID, types.FieldValues{"Title": "Dune"})
	putItem(t, store, books.ClusterID, types.FieldValues{"Title": "Emma"})

	sums, err := repo.Summaries()
	require.NoError(t, err)
	require.Len(t, sums, 2)

	byID := map[string]ClusterSummary{}
	for _, s := range sums {
		byID[s.Cluster.ClusterID] = s
	}
	assert.Equal(t, 3, byID[books.ClusterID].FieldCount)
	assert.Equal(t, 2, byID[books.ClusterID].ItemCount)
	assert.Equal(t, 1, byID[films.ClusterID].FieldCount)
	assert.Equal(t, 0, byID[films.ClusterID].ItemCount)
}

func TestRepositoryItems(t *testing.T) {
	store := newStore(t)
	repo := NewRepository(store)
	books := mustCreate(t, repo, "Books", "Title")
	dune := putItem(t, store, books.ClusterID, types.FieldValues{"Title": "Dune"})
	emma := putItem(t, store, books.ClusterID, types.FieldValues{"Title": "Emma"})

	items, err := repo.Items(books.ClusterID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, emma.ItemID, items[0].ItemID, "newest first")

	got, err := repo.GetItem(dune.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.FieldValues()["Title"])

	require.NoError(t, repo.DeleteItem(dune.ItemID))
	_, err = repo.GetItem(dune.ItemID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteItem(dune.ItemID), types.ErrNotFound)

	_, err = repo.Items("")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = repo.Fields("")
	assert.ErrorIs(t, err, types.ErrInvalidID)
}

func TestRepositoryDetachedStore(t *testing.T) {
	store := newStore(t)
	repo := NewRepository(store)
	require.NoError(t, store.Detach())

	_, err := repo.ListClusters()
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = repo.CreateCluster("Books", []string{"Title"})
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}
