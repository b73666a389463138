package clusters

import (
	"github.com/mesh-intelligence/clusters/pkg/types"
)

// Repository creates, lists and deletes clusters and reads their fields and
// items.
type Repository struct {
	store types.Store
}

// NewRepository returns a Repository over an attached store.
func NewRepository(store types.Store) *Repository {
	return &Repository{store: store}
}

// ClusterSummary is a cluster with the sizes shown in listings.
type ClusterSummary struct {
	Cluster    *types.Cluster
	FieldCount int
	ItemCount  int
}

// CreateCluster stores a new cluster with one field per non-blank name, in
// the order given. The name and field names are trimmed first.
// Returns ErrInvalidName for a blank name and ErrNoFields when no field name
// survives trimming; nothing is stored in either case.
func (r *Repository) CreateCluster(name string, fieldNames []string) (*types.Cluster, error) {
	c, err := types.NewCluster(name)
	if err != nil {
		return nil, err
	}
	names := types.NormalizeFieldNames(fieldNames)
	if len(names) == 0 {
		return nil, types.ErrNoFields
	}

	err = r.store.Update(func(tx types.Tx) error {
		ct, err := tx.GetTable(types.ClustersTable)
		if err != nil {
			return err
		}
		if _, err := ct.Set("", c); err != nil {
			return err
		}
		ft, err := tx.GetTable(types.FieldDefinitionsTable)
		if err != nil {
			return err
		}
		for _, fd := range types.NewFieldDefinitions(c.ClusterID, names) {
			if _, err := ft.Set("", fd); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("create cluster", err)
	}
	return c, nil
}

// DeleteCluster removes the cluster with all of its field definitions and
// items.
func (r *Repository) DeleteCluster(clusterID string) error {
	err := r.store.Update(func(tx types.Tx) error {
		ct, err := tx.GetTable(types.ClustersTable)
		if err != nil {
			return err
		}
		return ct.Delete(clusterID)
	})
	return storageErr("delete cluster", err)
}

// ListClusters returns every cluster, newest first.
func (r *Repository) ListClusters() ([]*types.Cluster, error) {
	ct, err := r.store.GetTable(types.ClustersTable)
	if err != nil {
		return nil, storageErr("list clusters", err)
	}
	rows, err := ct.Fetch(nil)
	if err != nil {
		return nil, storageErr("list clusters", err)
	}
	out := make([]*types.Cluster, len(rows))
	for i, row := range rows {
		out[i] = row.(*types.Cluster)
	}
	return out, nil
}

// Summaries returns ListClusters with each cluster's field and item counts.
func (r *Repository) Summaries() ([]ClusterSummary, error) {
	list, err := r.ListClusters()
	if err != nil {
		return nil, err
	}
	fields, err := fetchFields(r.store, "")
	if err != nil {
		return nil, storageErr("list fields", err)
	}
	items, err := fetchItems(r.store, "")
	if err != nil {
		return nil, storageErr("list items", err)
	}

	fieldCounts := make(map[string]int)
	for _, f := range fields {
		fieldCounts[f.ClusterID]++
	}
	itemCounts := make(map[string]int)
	for _, it := range items {
		itemCounts[it.ClusterID]++
	}

	out := make([]ClusterSummary, len(list))
	for i, c := range list {
		out[i] = ClusterSummary{
			Cluster:    c,
			FieldCount: fieldCounts[c.ClusterID],
			ItemCount:  itemCounts[c.ClusterID],
		}
	}
	return out, nil
}

// GetCluster returns one cluster. Returns ErrNotFound when absent.
func (r *Repository) GetCluster(clusterID string) (*types.Cluster, error) {
	c, err := getCluster(r.store, clusterID)
	if err != nil {
		return nil, storageErr("get cluster", err)
	}
	return c, nil
}

// Fields returns the cluster's field definitions ordered by Order.
func (r *Repository) Fields(clusterID string) ([]*types.FieldDefinition, error) {
	if clusterID == "" {
		return nil, types.ErrInvalidID
	}
	defs, err := fetchFields(r.store, clusterID)
	if err != nil {
		return nil, storageErr("list fields", err)
	}
	return defs, nil
}

// Items returns the cluster's items, newest first.
func (r *Repository) Items(clusterID string) ([]*types.Item, error) {
	if clusterID == "" {
		return nil, types.ErrInvalidID
	}
	items, err := fetchItems(r.store, clusterID)
	if err != nil {
		return nil, storageErr("list items", err)
	}
	return items, nil
}

// GetItem returns one item. Returns ErrNotFound when absent.
func (r *Repository) GetItem(itemID string) (*types.Item, error) {
	it, err := getItem(r.store, itemID)
	if err != nil {
		return nil, storageErr("get item", err)
	}
	return it, nil
}

// DeleteItem removes one item. Returns ErrNotFound when absent.
func (r *Repository) DeleteItem(itemID string) error {
	err := r.store.Update(func(tx types.Tx) error {
		it, err := tx.GetTable(types.ItemsTable)
		if err != nil {
			return err
		}
		return it.Delete(itemID)
	})
	return storageErr("delete item", err)
}
