package features

import (
	"fmt"
	"strings"

	"conversion-insights-go/internal/types"
)

// Schema is the ordered feature column list fixed at training time. It is the
// contract between the table a model was trained on and the vectors it is served.
type Schema struct {
	Columns []string `json:"columns"`
}

// NewSchema copies cols into a Schema.
func NewSchema(cols []string) Schema {
	return Schema{Columns: append([]string(nil), cols...)}
}

func (s Schema) Width() int { return len(s.Columns) }

// WithPrefix returns the one-hot columns of the field prefix, in schema order.
func (s Schema) WithPrefix(prefix string) []string {
	p := prefix + "_"
	var out []string
	for _, c := range s.Columns {
		if strings.HasPrefix(c, p) {
			out = append(out, c)
		}
	}
	return out
}

// Validate rejects empty schemas and duplicate columns.
func (s Schema) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("%w: schema has no columns", types.ErrArtifactMismatch)
	}
	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if c == "" {
			return fmt.Errorf("%w: schema has an empty column name", types.ErrArtifactMismatch)
		}
		if _, ok := seen[c]; ok {
			return fmt.Errorf("%w: duplicate column %q", types.ErrArtifactMismatch, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}
