package types

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Preview rendering.
const (
	PreviewSeparator   = " • "
	PreviewPlaceholder = "No fields"
	previewValueLimit  = 2
)

// Item is a record in a cluster. Its values live in an encoded blob that is
// only read and written as a whole through FieldValues and SetFieldValues.
type Item struct {
	ItemID          string    // UUID v7, generated on creation.
	ClusterID       string    // Owning cluster (required).
	CreatedAt       time.Time // Timestamp of creation; never changes.
	FieldValuesData []byte    // Encoded FieldValues; nil when never written.
}

// FieldValue is one name/value pair projected out of an item.
type FieldValue struct {
	Name  string
	Value string
}

// NewItem returns an unsaved item for clusterID holding values.
func NewItem(clusterID string, values FieldValues) (*Item, error) {
	it := &Item{ClusterID: clusterID}
	if err := it.SetFieldValues(values); err != nil {
		return nil, err
	}
	return it, nil
}

// FieldValues decodes the stored mapping. It never fails; see
// DecodeFieldValues.
func (i *Item) FieldValues() FieldValues {
	return DecodeFieldValues(i.FieldValuesData)
}

// SetFieldValues replaces the stored mapping.
func (i *Item) SetFieldValues(values FieldValues) error {
	data, err := EncodeFieldValues(values)
	if err != nil {
		return err
	}
	i.FieldValuesData = data
	return nil
}

// HasField reports whether the item stores a value under name.
func (i *Item) HasField(name string) bool {
	return i.FieldValues().Has(name)
}

// ActiveFields returns one entry per current field, in schema order. Fields
// the item holds no value for come back with an empty Value.
func (i *Item) ActiveFields(defs []*FieldDefinition) []FieldValue {
	values := i.FieldValues()
	names := FieldNames(defs)
	out := make([]FieldValue, len(names))
	for j, n := range names {
		out[j] = FieldValue{Name: n, Value: values[n]}
	}
	return out
}

// ArchivedFields returns the stored entries whose key is not the name of any
// current field, sorted case-insensitively by key.
func (i *Item) ArchivedFields(defs []*FieldDefinition) []FieldValue {
	active := make(map[string]bool, len(defs))
	for _, d := range defs {
		active[d.FieldName] = true
	}
	var out []FieldValue
	for k, v := range i.FieldValues() {
		if !active[k] {
			out = append(out, FieldValue{Name: k, Value: v})
		}
	}
	sortFieldValuesByName(out)
	return out
}

// Preview joins the first two values the item holds for current fields, in
// schema order, for list display. A field the item has no entry for is
// skipped; an entry holding an empty string still takes its place. Items
// with no entry for any current field yield PreviewPlaceholder.
func (i *Item) Preview(defs []*FieldDefinition) string {
	values := i.FieldValues()
	var parts []string
	for _, n := range FieldNames(defs) {
		v, ok := values[n]
		if !ok {
			continue
		}
		parts = append(parts, v)
		if len(parts) == previewValueLimit {
			break
		}
	}
	if len(parts) == 0 {
		return PreviewPlaceholder
	}
	return strings.Join(parts, PreviewSeparator)
}

// sortFieldValuesByName orders entries by name ignoring case. Names equal
// under the collator fall back to a byte comparison so the order is stable.
func sortFieldValuesByName(fv []FieldValue) {
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(fv, func(a, b int) bool {
		if r := c.CompareString(fv[a].Name, fv[b].Name); r != 0 {
			return r < 0
		}
		return fv[a].Name < fv[b].Name
	})
}
