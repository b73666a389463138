package types

import "sort"

// FieldDefinition is one named field of a cluster's schema. Order defines
// display and input order; within a cluster the orders are 0..n-1.
type FieldDefinition struct {
	FieldID   string // UUID v7, generated on creation.
	ClusterID string // Owning cluster (required).
	FieldName string // Field name; also the key under which items store values.
	Order     int    // Zero-based position in the schema.
}

// NormalizeFieldNames trims every name and drops the blank ones, keeping
// the input order.
func NormalizeFieldNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if t := TrimText(n); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// NewFieldDefinitions builds unsaved field definitions for clusterID from
// names. Blank names are dropped and Order is the position among the
// surviving names.
func NewFieldDefinitions(clusterID string, names []string) []*FieldDefinition {
	normalized := NormalizeFieldNames(names)
	defs := make([]*FieldDefinition, len(normalized))
	for i, n := range normalized {
		defs[i] = &FieldDefinition{
			ClusterID: clusterID,
			FieldName: n,
			Order:     i,
		}
	}
	return defs
}

// SortFieldDefinitions returns a copy of defs ordered by Order.
func SortFieldDefinitions(defs []*FieldDefinition) []*FieldDefinition {
	sorted := make([]*FieldDefinition, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})
	return sorted
}

// FieldNames returns the names of defs in Order.
func FieldNames(defs []*FieldDefinition) []string {
	sorted := SortFieldDefinitions(defs)
	names := make([]string, len(sorted))
	for i, d := range sorted {
		names[i] = d.FieldName
	}
	return names
}

// OrdersContiguous reports whether the orders of defs form exactly 0..n-1.
func OrdersContiguous(defs []*FieldDefinition) bool {
	seen := make([]bool, len(defs))
	for _, d := range defs {
		if d.Order < 0 || d.Order >= len(defs) || seen[d.Order] {
			return false
		}
		seen[d.Order] = true
	}
	return true
}
