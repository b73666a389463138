package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL for all tables. Field definitions and items reference their
// cluster; the explicit cascade in clustersTable.Delete runs first and the
// ON DELETE CASCADE clauses only back it up.
const (
	createClusters = `CREATE TABLE IF NOT EXISTS clusters (
    cluster_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createFieldDefinitions = `CREATE TABLE IF NOT EXISTS field_definitions (
    field_id TEXT PRIMARY KEY,
    cluster_id TEXT NOT NULL,
    field_name TEXT NOT NULL,
    ord INTEGER NOT NULL,
    FOREIGN KEY (cluster_id) REFERENCES clusters(cluster_id) ON DELETE CASCADE
);`

	createItems = `CREATE TABLE IF NOT EXISTS items (
    item_id TEXT PRIMARY KEY,
    cluster_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    field_values BLOB,
    FOREIGN KEY (cluster_id) REFERENCES clusters(cluster_id) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxClustersCreated       = `CREATE INDEX IF NOT EXISTS idx_clusters_created ON clusters(created_at);`
	idxFieldDefinitionsOrder = `CREATE INDEX IF NOT EXISTS idx_field_definitions_cluster ON field_definitions(cluster_id, ord);`
	idxItemsCluster          = `CREATE INDEX IF NOT EXISTS idx_items_cluster ON items(cluster_id, created_at);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createClusters,
	createFieldDefinitions,
	createItems,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxClustersCreated,
	idxFieldDefinitionsOrder,
	idxItemsCluster,
}

// applySchema creates any missing tables and indexes.
func applySchema(db *sql.DB) error {
	for _, stmt := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
