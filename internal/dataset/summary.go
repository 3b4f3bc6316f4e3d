package dataset

import (
	"sort"
	"strings"

	"conversion-insights-go/internal/features"
	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/pipeline"
)

type Summary struct {
	TotalRows      int            `json:"total_rows"`
	Conversions    int            `json:"conversions"`
	ConversionRate float64        `json:"conversion_rate"`
	Columns        int            `json:"columns"`
	ByCategory     map[string]int `json:"by_category"`
	TopCategories  []string       `json:"top_categories"`
}

// Summarize computes the label balance of a table and how often each one-hot
// category is set.
func Summarize(t pipeline.Table) Summary {
	s := Summary{
		TotalRows:  len(t.Rows),
		Columns:    t.Schema.Width(),
		ByCategory: map[string]int{},
	}
	var catIdx []int
	for i, c := range t.Schema.Columns {
		for _, p := range features.CategoricalPrefixes {
			if strings.HasPrefix(c, p+"_") {
				catIdx = append(catIdx, i)
			}
		}
	}
	for _, r := range t.Rows {
		s.Conversions += r.Converted
		for _, i := range catIdx {
			if r.Values[i] == 1 {
				s.ByCategory[t.Schema.Columns[i]]++
			}
		}
	}
	if s.TotalRows > 0 {
		s.ConversionRate = float64(s.Conversions) / float64(s.TotalRows)
	}

	type pc struct {
		p string
		c int
	}
	var arr []pc
	for k, v := range s.ByCategory {
		arr = append(arr, pc{k, v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].c != arr[j].c {
			return arr[i].c > arr[j].c
		}
		return arr[i].p < arr[j].p
	})
	s.TopCategories = []string{}
	for i := 0; i < len(arr) && i < 3; i++ {
		s.TopCategories = append(s.TopCategories, arr[i].p)
	}
	return s
}

// LoadAndSummarize reads an exported table and logs its label balance.
func LoadAndSummarize(path string, log *logger.Logger) (pipeline.Table, Summary, error) {
	l := log.Component("dataset.summary").WithField("path", path)
	l.Info("loading dataset")
	t, err := Load(path)
	if err != nil {
		l.WithError(err).Error("load failed")
		return pipeline.Table{}, Summary{}, err
	}
	s := Summarize(t)
	l.WithFields(map[string]interface{}{
		"total_rows":      s.TotalRows,
		"conversions":     s.Conversions,
		"conversion_rate": s.ConversionRate,
		"columns":         s.Columns,
		"top_categories":  s.TopCategories,
	}).Info("dataset summarization complete")
	return t, s, nil
}
