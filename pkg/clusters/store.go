package clusters

import (
	"errors"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

// tableSource is satisfied by both types.Store and types.Tx.
type tableSource interface {
	GetTable(name string) (types.Table, error)
}

// passThrough lists errors that describe the request rather than a storage
// failure; they are returned as they are.
var passThrough = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrStoreDetached,
}

// storageErr wraps err as a *types.StorageError unless it is a validation or
// lookup error.
func storageErr(op string, err error) error {
	if err == nil || types.IsValidation(err) {
		return err
	}
	for _, target := range passThrough {
		if errors.Is(err, target) {
			return err
		}
	}
	var se *types.StorageError
	if errors.As(err, &se) {
		return err
	}
	return types.NewStorageError(op, err)
}

func getCluster(src tableSource, id string) (*types.Cluster, error) {
	ct, err := src.GetTable(types.ClustersTable)
	if err != nil {
		return nil, err
	}
	v, err := ct.Get(id)
	if err != nil {
		return nil, err
	}
	return v.(*types.Cluster), nil
}

func getItem(src tableSource, id string) (*types.Item, error) {
	it, err := src.GetTable(types.ItemsTable)
	if err != nil {
		return nil, err
	}
	v, err := it.Get(id)
	if err != nil {
		return nil, err
	}
	return v.(*types.Item), nil
}

// fetchFields returns the cluster's field definitions in order. An empty
// clusterID fetches every field definition.
func fetchFields(src tableSource, clusterID string) ([]*types.FieldDefinition, error) {
	ft, err := src.GetTable(types.FieldDefinitionsTable)
	if err != nil {
		return nil, err
	}
	rows, err := ft.Fetch(clusterFilter(clusterID))
	if err != nil {
		return nil, err
	}
	defs := make([]*types.FieldDefinition, len(rows))
	for i, r := range rows {
		defs[i] = r.(*types.FieldDefinition)
	}
	return types.SortFieldDefinitions(defs), nil
}

// fetchItems returns the cluster's items newest first. An empty clusterID
// fetches every item.
func fetchItems(src tableSource, clusterID string) ([]*types.Item, error) {
	it, err := src.GetTable(types.ItemsTable)
	if err != nil {
		return nil, err
	}
	rows, err := it.Fetch(clusterFilter(clusterID))
	if err != nil {
		return nil, err
	}
	items := make([]*types.Item, len(rows))
	for i, r := range rows {
		items[i] = r.(*types.Item)
	}
	return items, nil
}

func clusterFilter(clusterID string) types.Filter {
	if clusterID == "" {
		return nil
	}
	return types.Filter{types.FilterClusterID: clusterID}
}
