package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValuesRoundTrip(t *testing.T) {
	in := FieldValues{"Title": "Dune"}
	data, err := EncodeFieldValues(in)
	require.NoError(t, err)
	assert.Equal(t, in, DecodeFieldValues(data))
}

func TestEncodeFieldValuesNil(t *testing.T) {
	data, err := EncodeFieldValues(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestDecodeFieldValuesDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "nil blob", data: nil},
		{name: "empty blob", data: []byte{}},
		{name: "corrupt blob", data: []byte("{not json")},
		{name: "json null", data: []byte("null")},
		{name: "wrong shape", data: []byte(`["Title","Dune"]`)},
		{name: "non-string values", data: []byte(`{"Year": 1965}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeFieldValues(tt.data)
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestFieldValuesHelpers(t *testing.T) {
	v := FieldValues{"Title": "  Dune ", "Old": "kept", "Blank": "   "}

	t.Run("Trimmed trims values only", func(t *testing.T) {
		got := v.Trimmed()
		assert.Equal(t, FieldValues{"Title": "Dune", "Old": "kept", "Blank": ""}, got)
		assert.Equal(t, "  Dune ", v["Title"], "receiver unchanged")
	})

	t.Run("HasContent", func(t *testing.T) {
		assert.True(t, v.HasContent())
		assert.False(t, FieldValues{"a": " ", "b": ""}.HasContent())
		assert.False(t, FieldValues{}.HasContent())
	})

	t.Run("EnsureFields backfills without overwriting", func(t *testing.T) {
		c := v.Clone()
		c.EnsureFields([]string{"Title", "Author"})
		assert.Equal(t, "  Dune ", c["Title"])
		assert.True(t, c.Has("Author"))
		assert.Equal(t, "", c["Author"])
		assert.Equal(t, "kept", c["Old"])
		assert.False(t, v.Has("Author"), "clone is independent")
	})
}
