package types

import (
	"strings"
	"time"
)

// Cluster is a user-defined record schema. Its field definitions and items
// live in their own tables and point back through ClusterID.
type Cluster struct {
	ClusterID string    // UUID v7, generated on creation.
	Name      string    // Human-readable name (required, non-empty after trimming).
	CreatedAt time.Time // Timestamp of creation; never changes.
}

// NewCluster returns an unsaved cluster with a trimmed name.
// Returns ErrInvalidName if the name is blank.
func NewCluster(name string) (*Cluster, error) {
	c := &Cluster{}
	if err := c.Rename(name); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename sets the cluster name to the trimmed value of name.
// Returns ErrInvalidName and leaves the name unchanged if name is blank.
func (c *Cluster) Rename(name string) error {
	trimmed := TrimText(name)
	if trimmed == "" {
		return ErrInvalidName
	}
	c.Name = trimmed
	return nil
}

// TrimText removes leading and trailing whitespace and newlines. Every name
// and value entering the model is trimmed with it.
func TrimText(s string) string {
	return strings.TrimSpace(s)
}
