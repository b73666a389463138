// This file implements the field_definitions table accessor. Deleting a field
// definition removes only its row; item field values keyed by its name stay.
package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

var _ types.Table = (*fieldDefinitionsTable)(nil)

type fieldDefinitionsTable struct {
	tableBase
}

var fieldDefinitionColumns = []string{"field_id", "cluster_id", "field_name", "ord"}

// Get retrieves a field definition by ID.
func (ft *fieldDefinitionsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	query, args, err := sqlb.Select(fieldDefinitionColumns...).From("field_definitions").
		Where(squirrel.Eq{"field_id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var fd *types.FieldDefinition
	err = ft.read(func(q querier) error {
		var err error
		fd, err = scanFieldDefinition(q.QueryRow(query, args...))
		if err == sql.ErrNoRows {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting field definition %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fd, nil
}

func scanFieldDefinition(row rowScanner) (*types.FieldDefinition, error) {
	var fd types.FieldDefinition
	if err := row.Scan(&fd.FieldID, &fd.ClusterID, &fd.FieldName, &fd.Order); err != nil {
		return nil, err
	}
	return &fd, nil
}

// Set creates a field definition or updates its name and order. The owning
// cluster must exist and never changes after creation.
func (ft *fieldDefinitionsTable) Set(id string, data any) (string, error) {
	fd, ok := data.(*types.FieldDefinition)
	if !ok || fd == nil {
		return "", types.ErrInvalidData
	}
	if fd.ClusterID == "" {
		return "", types.ErrInvalidID
	}
	if types.TrimText(fd.FieldName) == "" {
		return "", types.ErrInvalidFieldName
	}
	if fd.Order < 0 {
		return "", types.ErrInvalidData
	}

	if id == "" && fd.FieldID == "" {
		fd.FieldID = newUUID()
	} else if id != "" {
		fd.FieldID = id
	}

	query, args, err := sqlb.Insert("field_definitions").Columns(fieldDefinitionColumns...).
		Values(fd.FieldID, fd.ClusterID, fd.FieldName, fd.Order).
		Suffix("ON CONFLICT(field_id) DO UPDATE SET field_name = excluded.field_name, ord = excluded.ord").
		ToSql()
	if err != nil {
		return "", err
	}

	err = ft.write(func(q querier) error {
		found, err := exists(q, "clusters", squirrel.Eq{"cluster_id": fd.ClusterID})
		if err != nil {
			return fmt.Errorf("checking cluster: %w", err)
		}
		if !found {
			return fmt.Errorf("cluster %s: %w", fd.ClusterID, types.ErrNotFound)
		}
		if _, err := q.Exec(query, args...); err != nil {
			return fmt.Errorf("upserting field definition: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fd.FieldID, nil
}

// Delete removes one field definition.
func (ft *fieldDefinitionsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return ft.write(func(q querier) error {
		n, err := deleteWhere(q, "field_definitions", squirrel.Eq{"field_id": id})
		if err != nil {
			return fmt.Errorf("deleting field definition: %w", err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// Fetch returns field definitions ordered by cluster and order. Recognised
// filter keys: cluster_id, limit.
func (ft *fieldDefinitionsTable) Fetch(filter types.Filter) ([]any, error) {
	var found []*types.FieldDefinition
	err := ft.read(func(q querier) error {
		var err error
		found, err = fetchFieldDefinitions(q, filter)
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

func fetchFieldDefinitions(q querier, filter types.Filter) ([]*types.FieldDefinition, error) {
	sel := sqlb.Select(fieldDefinitionColumns...).From("field_definitions").
		OrderBy("cluster_id", "ord ASC", "field_id")
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
		return nil, fmt.Errorf("querying field definitions: %w", err)
	}
	defer rows.Close()

	results := []*types.FieldDefinition{}
	for rows.Next() {
		fd, err := scanFieldDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning field definition: %w", err)
		}
		results = append(results, fd)
	}
	return results, rows.Err()
}
