package aggregator

import (
	"sort"

	"conversion-insights-go/internal/types"
)

// Chakras and Quadrants are the two fixed score categories of an assessment.
var (
	Chakras = []string{
		"rootChakra", "sacralChakra", "solarPlexusChakra",
		"heartChakra", "throatChakra", "thirdEyeChakra", "crownChakra",
	}
	Quadrants = []string{
		"healthWellness", "loveRelationships", "careerJob", "timeMoney",
	}
)

// Score is the reduction of one category's answered questions.
type Score struct {
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// Named is a single scalar feature.
type Named struct {
	Name  string
	Value float64
}

// Aggregate averages every numeric "score" found under nested[category].
// A missing category, or one that is not an object, yields the zero Score.
func Aggregate(category string, nested map[string]any) Score {
	items, ok := nested[category].(map[string]any)
	if !ok {
		return Score{}
	}
	// sum in key order so the float result does not depend on map iteration
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sum float64
	n := 0
	for _, k := range keys {
		item, ok := items[k].(map[string]any)
		if !ok {
			continue
		}
		v, ok := types.Number(item["score"])
		if !ok {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return Score{}
	}
	return Score{Avg: sum / float64(n), Count: n}
}

// AggregateAll emits {category}_avg and {category}_count for every category, in order.
func AggregateAll(categories []string, nested map[string]any) []Named {
	out := make([]Named, 0, 2*len(categories))
	for _, c := range categories {
		s := Aggregate(c, nested)
		out = append(out,
			Named{Name: c + "_avg", Value: s.Avg},
			Named{Name: c + "_count", Value: float64(s.Count)},
		)
	}
	return out
}

// ColumnNames lists the feature names AggregateAll produces for categories.
func ColumnNames(categories []string) []string {
	out := make([]string, 0, 2*len(categories))
	for _, c := range categories {
		out = append(out, c+"_avg", c+"_count")
	}
	return out
}
