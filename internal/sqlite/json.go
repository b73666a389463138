// JSON record structures for JSONL export and import.
package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

// clusterJSON represents a cluster in clusters.jsonl.
type clusterJSON struct {
	ClusterID string `json:"cluster_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// fieldDefinitionJSON represents a field definition in field_definitions.jsonl.
type fieldDefinitionJSON struct {
	FieldID   string `json:"field_id"`
	ClusterID string `json:"cluster_id"`
	FieldName string `json:"field_name"`
	Ord       int    `json:"ord"`
}

// itemJSON represents an item in items.jsonl. Field values are written as a
// JSON object rather than an opaque blob so the file stays readable.
type itemJSON struct {
	ItemID      string            `json:"item_id"`
	ClusterID   string            `json:"cluster_id"`
	CreatedAt   string            `json:"created_at"`
	FieldValues map[string]string `json:"field_values"`
}

// cluster converts an imported record, applying the rules clustersTable.Set
// enforces. The timestamp must parse so later reads of the row succeed.
func (r clusterJSON) cluster() (*types.Cluster, error) {
	if r.ClusterID == "" {
		return nil, types.ErrInvalidID
	}
	if types.TrimText(r.Name) == "" {
		return nil, types.ErrInvalidName
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", types.ErrInvalidData)
	}
	return &types.Cluster{ClusterID: r.ClusterID, Name: r.Name, CreatedAt: created}, nil
}

// fieldDefinition converts an imported record, applying the rules
// fieldDefinitionsTable.Set enforces. Orders are renumbered after loading.
func (r fieldDefinitionJSON) fieldDefinition() (*types.FieldDefinition, error) {
	if r.FieldID == "" || r.ClusterID == "" {
		return nil, types.ErrInvalidID
	}
	if types.TrimText(r.FieldName) == "" {
		return nil, types.ErrInvalidFieldName
	}
	if r.Ord < 0 {
		return nil, types.ErrInvalidData
	}
	return &types.FieldDefinition{FieldID: r.FieldID, ClusterID: r.ClusterID, FieldName: r.FieldName, Order: r.Ord}, nil
}

// item converts an imported record, applying the rules itemsTable.Set
// enforces.
func (r itemJSON) item() (*types.Item, error) {
	if r.ItemID == "" || r.ClusterID == "" {
		return nil, types.ErrInvalidID
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", types.ErrInvalidData)
	}
	it := &types.Item{ItemID: r.ItemID, ClusterID: r.ClusterID, CreatedAt: created}
	if err := it.SetFieldValues(r.FieldValues); err != nil {
		return nil, err
	}
	return it, nil
}
