// This file implements the clusters table accessor, including the cascade
// that removes a cluster's field definitions and items with it.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

var _ types.Table = (*clustersTable)(nil)

type clustersTable struct {
	tableBase
}

var clusterColumns = []string{"cluster_id", "name", "created_at"}

// Get retrieves a cluster by ID.
func (ct *clustersTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var c *types.Cluster
	err := ct.read(func(q querier) error {
		var err error
		c, err = getCluster(q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func getCluster(q querier, id string) (*types.Cluster, error) {
	query, args, err := sqlb.Select(clusterColumns...).From("clusters").
		Where(squirrel.Eq{"cluster_id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	c, err := scanCluster(q.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting cluster %s: %w", id, err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCluster(row rowScanner) (*types.Cluster, error) {
	var c types.Cluster
	var createdAt string
	if err := row.Scan(&c.ClusterID, &c.Name, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing cluster created_at: %w", err)
	}
	c.CreatedAt = t
	return &c, nil
}

// Set creates or renames a cluster. CreatedAt is written once and never
// updated.
func (ct *clustersTable) Set(id string, data any) (string, error) {
	c, ok := data.(*types.Cluster)
	if !ok || c == nil {
		return "", types.ErrInvalidData
	}
	if types.TrimText(c.Name) == "" {
		return "", types.ErrInvalidName
	}

	if id == "" && c.ClusterID == "" {
		c.ClusterID = newUUID()
	} else if id != "" {
		c.ClusterID = id
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query, args, err := sqlb.Insert("clusters").Columns(clusterColumns...).
		Values(c.ClusterID, c.Name, formatTime(c.CreatedAt)).
		Suffix("ON CONFLICT(cluster_id) DO UPDATE SET name = excluded.name").
		ToSql()
	if err != nil {
		return "", err
	}
	err = ct.write(func(q querier) error {
		if _, err := q.Exec(query, args...); err != nil {
			return fmt.Errorf("upserting cluster: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return c.ClusterID, nil
}

// Delete removes a cluster together with every field definition and item
// that references it.
func (ct *clustersTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return ct.write(func(q querier) error {
		found, err := exists(q, "clusters", squirrel.Eq{"cluster_id": id})
		if err != nil {
			return fmt.Errorf("checking cluster: %w", err)
		}
		if !found {
			return types.ErrNotFound
		}

		// Owned rows first, then the cluster itself.
		items, err := deleteWhere(q, "items", squirrel.Eq{"cluster_id": id})
		if err != nil {
			return fmt.Errorf("deleting cluster items: %w", err)
		}
		fields, err := deleteWhere(q, "field_definitions", squirrel.Eq{"cluster_id": id})
		if err != nil {
			return fmt.Errorf("deleting cluster fields: %w", err)
		}
		if _, err := deleteWhere(q, "clusters", squirrel.Eq{"cluster_id": id}); err != nil {
			return fmt.Errorf("deleting cluster: %w", err)
		}

		ct.backend.logger.Debug("cluster deleted", "cluster_id", id, "items", items, "fields", fields)
		return nil
	})
}

// deleteWhere deletes the rows matching eq and returns how many went.
func deleteWhere(q querier, table string, eq squirrel.Eq) (int64, error) {
	query, args, err := sqlb.Delete(table).Where(eq).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := q.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Fetch returns clusters newest first. Recognised filter keys: limit.
func (ct *clustersTable) Fetch(filter types.Filter) ([]any, error) {
	var found []*types.Cluster
	err := ct.read(func(q querier) error {
		var err error
		found, err = fetchClusters(q, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	results := make([]any, len(found))
	for i, e := range found {
		results[i] = e
	}
	return results, nil
}

func fetchClusters(q querier, filter types.Filter) ([]*types.Cluster, error) {
	sel := sqlb.Select(clusterColumns...).From("clusters").
		OrderBy("created_at DESC", "cluster_id DESC")
	sel, err := applyCommonFilter(sel, filter, false)
	if err != nil {
		return nil, err
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying clusters: %w", err)
	}
	defer rows.Close()

	results := []*types.Cluster{}
	for rows.Next() {
		c, err := scanCluster(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cluster: %w", err)
		}
		results = append(results, c)
	}
	return results, rows.Err()
}
