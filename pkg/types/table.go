package types

import "errors"

// Filter selects entities in Table.Fetch. Recognised keys depend on the
// table; see the Filter* constants.
type Filter map[string]any

// Filter keys.
const (
	FilterClusterID = "cluster_id" // string: restrict to one cluster
	FilterLimit     = "limit"      // int: maximum number of results
)

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity struct.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty and the entity has
	// no ID yet, a new UUID v7 is generated. Returns the actual ID used.
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID. Deleting a cluster also
	// deletes its field definitions and items.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table.
	Fetch(filter Filter) ([]any, error)
}

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter value type")
)
