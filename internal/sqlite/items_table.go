// This file implements the items table accessor. The field value blob is
// stored and returned exactly as the caller encoded it.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

var _ types.Table = (*itemsTable)(nil)

type itemsTable struct {
	tableBase
}

var itemColumns = []string{"item_id", "cluster_id", "created_at", "field_values"}

// Get retrieves an item by ID.
func (it *itemsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	query, args, err := sqlb.Select(itemColumns...).From("items").
		Where(squirrel.Eq{"item_id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var item *types.Item
	err = it.read(func(q querier) error {
		var err error
		item, err = scanItem(q.QueryRow(query, args...))
		if err == sql.ErrNoRows {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting item %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func scanItem(row rowScanner) (*types.Item, error) {
	var item types.Item
	var createdAt string
	var values []byte
	if err := row.Scan(&item.ItemID, &item.ClusterID, &createdAt, &values); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing item created_at: %w", err)
	}
	item.CreatedAt = t
	item.FieldValuesData = values
	return &item, nil
}

// Set creates an item or overwrites its field value blob in place.
func (it *itemsTable) Set(id string, data any) (string, error) {
	item, ok := data.(*types.Item)
	if !ok || item == nil {
		return "", types.ErrInvalidData
	}
	if item.ClusterID == "" {
		return "", types.ErrInvalidID
	}

	if id == "" && item.ItemID == "" {
		item.ItemID = newUUID()
	} else if id != "" {
		item.ItemID = id
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	query, args, err := sqlb.Insert("items").Columns(itemColumns...).
		Values(item.ItemID, item.ClusterID, formatTime(item.CreatedAt), item.FieldValuesData).
		Suffix("ON CONFLICT(item_id) DO UPDATE SET field_values = excluded.field_values").
		ToSql()
	if err != nil {
		return "", err
	}

	err = it.write(func(q querier) error {
		found, err := exists(q, "clusters", squirrel.Eq{"cluster_id": item.ClusterID})
		if err != nil {
			return fmt.Errorf("checking cluster: %w", err)
		}
		if !found {
			return fmt.Errorf("cluster %s: %w", item.ClusterID, types.ErrNotFound)
		}
		if _, err := q.Exec(query, args...); err != nil {
			return fmt.Errorf("upserting item: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return item.ItemID, nil
}

// Delete removes one item.
func (it *itemsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return it.write(func(q querier) error {
		n, err := deleteWhere(q, "items", squirrel.Eq{"item_id": id})
		if err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// Fetch returns items newest first. Recognised filter keys: cluster_id,
// limit.
func (it *itemsTable) Fetch(filter types.Filter) ([]any, error) {
	var found []*types.Item
	err := it.read(func(q querier) error {
		var err error
		found, err = fetchItems(q, filter)
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

func fetchItems(q querier, filter types.Filter) ([]*types.Item, error) {
	sel := sqlb.Select(itemColumns...).From("items").
		OrderBy("created_at DESC", "item_id DESC")
	sel, err := applyCommonFilter(sel, filter, true)
	if err != nil {
		return nil, err
	}
	query, args, err := sel.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	results := []*types.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		results = append(results, item)
	}
	return results, rows.Err()
}
