package features

import (
	"conversion-insights-go/internal/aggregator"
	"conversion-insights-go/internal/types"
)

// Names of the demographic and engagement columns, in vector order.
const (
	ColAgeBracket       = "age_bracket_number"
	ColHealthcareWorker = "is_healthcare_worker"
	ColHealthcareYears  = "healthcare_years_numeric"
	ColNumChallenges    = "num_challenges"
	ColNumFamiliar      = "num_familiar"
	ColHasGoals         = "has_goals"
)

// Features is the numeric part of a row plus the raw values of the categorical
// fields, which are only turned into columns against a Schema.
type Features struct {
	Names       []string
	Values      []float64
	FocusChakra string
	Archetype   string
}

// Map returns the numeric features keyed by name.
func (f Features) Map() map[string]float64 {
	m := make(map[string]float64, len(f.Names))
	for i, n := range f.Names {
		m[n] = f.Values[i]
	}
	return m
}

// Categorical returns the raw value of an encoded field.
func (f Features) Categorical(prefix string) string {
	switch prefix {
	case FocusChakraPrefix:
		return f.FocusChakra
	case ArchetypePrefix:
		return f.Archetype
	}
	return types.UnknownCategory
}

// BaseColumns lists the numeric columns Build always produces, in order.
func BaseColumns() []string {
	cols := []string{
		ColAgeBracket, ColHealthcareWorker, ColHealthcareYears,
		ColNumChallenges, ColNumFamiliar, ColHasGoals,
	}
	cols = append(cols, aggregator.ColumnNames(aggregator.Chakras)...)
	return append(cols, aggregator.ColumnNames(aggregator.Quadrants)...)
}

// Builder turns assessments into feature rows. It holds no state, so one value
// is shared by dataset assembly and by the prediction service.
type Builder struct{}

func NewBuilder() Builder { return Builder{} }

// Build reads the features out of a raw record.
func (b Builder) Build(rec types.Record) (Features, error) {
	if rec == nil {
		return Features{}, types.ErrInvalidInput
	}
	// createdAt is not a feature; an unreadable one only matters for labeling
	a, _ := types.NewAssessment(rec)
	return b.FromAssessment(a), nil
}

// FromAssessment builds the feature row of a typed assessment.
func (Builder) FromAssessment(a types.Assessment) Features {
	f := Features{
		Names:       make([]string, 0, 28),
		Values:      make([]float64, 0, 28),
		FocusChakra: a.FocusChakra,
		Archetype:   a.Archetype,
	}
	add := func(name string, v float64) {
		f.Names = append(f.Names, name)
		f.Values = append(f.Values, v)
	}

	add(ColAgeBracket, AgeBracketNumber(a.AgeBracket))
	add(ColHealthcareWorker, boolToFloat(a.HealthcareWorker == "Yes"))
	add(ColHealthcareYears, ExperienceNumber(a.HealthcareYears))

	add(ColNumChallenges, float64(a.NumChallenges))
	add(ColNumFamiliar, float64(a.NumFamiliar))
	add(ColHasGoals, boolToFloat(a.HasGoals))

	for _, n := range aggregator.AggregateAll(aggregator.Chakras, a.ScoredChakras) {
		add(n.Name, n.Value)
	}
	for _, n := range aggregator.AggregateAll(aggregator.Quadrants, a.ScoredLifeQuadrants) {
		add(n.Name, n.Value)
	}
	return f
}

// Vector builds the model input for one raw request value: the features are
// encoded against the schema's one-hot columns and laid out in schema order.
// Schema columns the record does not produce are 0; anything else is dropped.
func (b Builder) Vector(raw any, schema Schema) ([]float64, error) {
	rec, err := types.AsRecord(raw)
	if err != nil {
		return nil, err
	}
	f, err := b.Build(rec)
	if err != nil {
		return nil, err
	}
	return f.Project(schema), nil
}

// Project lays a feature row out in schema order.
func (f Features) Project(schema Schema) []float64 {
	m := f.Map()
	for _, prefix := range CategoricalPrefixes {
		for col, v := range Encode(f.Categorical(prefix), prefix, schema.WithPrefix(prefix)) {
			m[col] = v
		}
	}
	out := make([]float64, schema.Width())
	for i, col := range schema.Columns {
		out[i] = m[col]
	}
	return out
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
