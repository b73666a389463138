package types

import (
	"encoding/json"
	"log/slog"
)

// FieldValues maps a field name to the value an item holds for it. Keys are
// names, not field IDs, so a map may hold keys that no current field
// definition carries any more. Those entries are archived data and are kept.
type FieldValues map[string]string

// EncodeFieldValues serialises the whole mapping into the blob stored on an
// item. A nil map encodes as an empty object.
func EncodeFieldValues(values FieldValues) ([]byte, error) {
	if values == nil {
		values = FieldValues{}
	}
	return json.Marshal(map[string]string(values))
}

// DecodeFieldValues parses a blob written by EncodeFieldValues. A missing or
// unreadable blob yields an empty, non-nil mapping; it is treated as "no data
// yet", never as an error.
func DecodeFieldValues(data []byte) FieldValues {
	if len(data) == 0 {
		return FieldValues{}
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		slog.Debug("discarding unreadable field values", "err", err, "bytes", len(data))
		return FieldValues{}
	}
	if m == nil {
		return FieldValues{}
	}
	return FieldValues(m)
}

// Clone returns an independent copy. The copy of a nil map is empty, not nil.
func (v FieldValues) Clone() FieldValues {
	out := make(FieldValues, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Has reports whether a value (possibly empty) is stored under name.
func (v FieldValues) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Trimmed returns a copy with every value trimmed. Keys are left alone so
// archived entries keep matching their original names.
func (v FieldValues) Trimmed() FieldValues {
	out := make(FieldValues, len(v))
	for k, val := range v {
		out[k] = TrimText(val)
	}
	return out
}

// HasContent reports whether at least one value is non-blank.
func (v FieldValues) HasContent() bool {
	for _, val := range v {
		if TrimText(val) != "" {
			return true
		}
	}
	return false
}

// EnsureFields adds an empty entry for every name not already present.
// Existing values, including archived ones, are untouched.
func (v FieldValues) EnsureFields(names []string) {
	for _, n := range names {
		if _, ok := v[n]; !ok {
			v[n] = ""
		}
	}
}
