package features

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"conversion-insights-go/internal/types"
)

func TestEncode(t *testing.T) {
	cols := []string{"focus_chakra_heartChakra", "focus_chakra_rootChakra", "archetype_healer"}

	t.Run("known value", func(t *testing.T) {
		got := Encode("heartChakra", FocusChakraPrefix, cols)
		assert.Equal(t, map[string]float64{
			"focus_chakra_heartChakra": 1,
			"focus_chakra_rootChakra":  0,
		}, got)
	})

	t.Run("unseen value", func(t *testing.T) {
		got := Encode("crownChakra", FocusChakraPrefix, cols)
		assert.Equal(t, map[string]float64{
			"focus_chakra_heartChakra": 0,
			"focus_chakra_rootChakra":  0,
		}, got)
	})

	t.Run("unknown default has no bucket", func(t *testing.T) {
		got := Encode("unknown", FocusChakraPrefix, cols)
		for col, v := range got {
			assert.Zero(t, v, col)
		}
	})

	t.Run("null category encodes as zeros", func(t *testing.T) {
		got := Encode(types.NoCategory, FocusChakraPrefix, append(cols, "focus_chakra_"))
		for col, v := range got {
			assert.Zero(t, v, col)
		}
	})

	t.Run("field without columns", func(t *testing.T) {
		assert.Empty(t, Encode("sage", ArchetypePrefix, []string{"focus_chakra_rootChakra"}))
	})
}

func TestDummyColumns(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{
			name:   "first sorted value dropped",
			values: []string{"rootChakra", "heartChakra", "crownChakra", "heartChakra"},
			want:   []string{"focus_chakra_heartChakra", "focus_chakra_rootChakra"},
		},
		{name: "single value", values: []string{"heartChakra", "heartChakra"}, want: []string{}},
		{name: "no values", values: nil, want: []string{}},
		{
			name:   "null categories get no column",
			values: []string{"", "rootChakra", "", "heartChakra"},
			want:   []string{"focus_chakra_rootChakra"},
		},
		{
			name:   "code point order",
			values: []string{"unknown", "Sage", "healer"},
			want:   []string{"focus_chakra_healer", "focus_chakra_unknown"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DummyColumns(FocusChakraPrefix, tc.values))
		})
	}
}

func TestSchemaValidate(t *testing.T) {
	assert.NoError(t, NewSchema([]string{"a", "b"}).Validate())
	assert.Error(t, NewSchema(nil).Validate())
	assert.Error(t, NewSchema([]string{"a", "a"}).Validate())
	assert.Error(t, NewSchema([]string{"a", ""}).Validate())
}

func TestSchemaWithPrefix(t *testing.T) {
	s := NewSchema([]string{"has_goals", "archetype_sage", "focus_chakra_rootChakra", "archetype_healer"})
	assert.Equal(t, []string{"archetype_sage", "archetype_healer"}, s.WithPrefix(ArchetypePrefix))
	assert.Equal(t, []string{"focus_chakra_rootChakra"}, s.WithPrefix(FocusChakraPrefix))
	assert.Equal(t, 4, s.Width())
}
