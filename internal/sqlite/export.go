// This file implements JSONL export of the whole store.
package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

// Export writes clusters.jsonl, field_definitions.jsonl and items.jsonl into
// dir, creating it if needed. Each file is replaced atomically. Items carry
// their field values as a JSON object.
func (b *Backend) Export(dir string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	clusters, err := fetchClusters(b.db, nil)
	if err != nil {
		return err
	}
	fields, err := fetchFieldDefinitions(b.db, nil)
	if err != nil {
		return err
	}
	items, err := fetchItems(b.db, nil)
	if err != nil {
		return err
	}

	clusterRecs := make([]clusterJSON, len(clusters))
	for i, c := range clusters {
		clusterRecs[i] = clusterJSON{ClusterID: c.ClusterID, Name: c.Name, CreatedAt: formatTime(c.CreatedAt)}
	}
	fieldRecs := make([]fieldDefinitionJSON, len(fields))
	for i, f := range fields {
		fieldRecs[i] = fieldDefinitionJSON{FieldID: f.FieldID, ClusterID: f.ClusterID, FieldName: f.FieldName, Ord: f.Order}
	}
	itemRecs := make([]itemJSON, len(items))
	for i, it := range items {
		itemRecs[i] = itemJSON{
			ItemID:      it.ItemID,
			ClusterID:   it.ClusterID,
			CreatedAt:   formatTime(it.CreatedAt),
			FieldValues: it.FieldValues(),
		}
	}

	if err := writeRecords(filepath.Join(dir, clustersJSONL), clusterRecs); err != nil {
		return err
	}
	if err := writeRecords(filepath.Join(dir, fieldDefinitionsJSONL), fieldRecs); err != nil {
		return err
	}
	if err := writeRecords(filepath.Join(dir, itemsJSONL), itemRecs); err != nil {
		return err
	}

	b.logger.Debug("exported", "dir", dir,
		"clusters", len(clusterRecs), "fields", len(fieldRecs), "items", len(itemRecs))
	return nil
}
