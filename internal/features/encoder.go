package features

import (
	"sort"
	"strings"

	"conversion-insights-go/internal/types"
)

// Prefixes of the two one-hot encoded fields.
const (
	FocusChakraPrefix = "focus_chakra"
	ArchetypePrefix   = "archetype"
)

// CategoricalPrefixes lists the encoded fields in column order.
var CategoricalPrefixes = []string{FocusChakraPrefix, ArchetypePrefix}

// ColumnName is the one-hot column for value of the field prefix.
func ColumnName(prefix, value string) string {
	return prefix + "_" + value
}

// Encode maps value onto the known one-hot columns of a field. The column whose
// suffix equals value is 1 and the rest are 0; an unseen value or NoCategory
// leaves them all 0. Columns that do not belong to prefix are ignored.
func Encode(value, prefix string, columns []string) map[string]float64 {
	p := prefix + "_"
	out := make(map[string]float64, len(columns))
	for _, col := range columns {
		if !strings.HasPrefix(col, p) {
			continue
		}
		if value != types.NoCategory && strings.TrimPrefix(col, p) == value {
			out[col] = 1
		} else {
			out[col] = 0
		}
	}
	return out
}

// DummyColumns derives the one-hot columns of a field from the values seen in a
// training table: distinct values sorted by code point, first one dropped.
// NoCategory values get no column.
func DummyColumns(prefix string, values []string) []string {
	seen := make(map[string]struct{}, len(values))
	distinct := make([]string, 0)
	for _, v := range values {
		if v == types.NoCategory {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	if len(distinct) < 2 {
		return []string{}
	}
	sort.Strings(distinct)
	cols := make([]string, 0, len(distinct)-1)
	for _, v := range distinct[1:] {
		cols = append(cols, ColumnName(prefix, v))
	}
	return cols
}
