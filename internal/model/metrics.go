package model

import "sort"

// Accuracy is the share of probabilities on the right side of 0.5.
func Accuracy(y []int, proba []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	correct := 0
	for i, p := range proba {
		if Decide(p) == (y[i] == 1) {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

// Decide turns a positive-class probability into a class; ties go to the negative class.
func Decide(p float64) bool {
	return p > 0.5
}

// ROCAUC computes the area under the ROC curve from rank sums, averaging tied
// ranks. It reports false when y holds a single class and the area is undefined.
func ROCAUC(y []int, proba []float64) (float64, bool) {
	type scored struct {
		p   float64
		pos bool
	}
	s := make([]scored, len(y))
	var nPos, nNeg float64
	for i, v := range y {
		s[i] = scored{proba[i], v == 1}
		if v == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, false
	}
	sort.Slice(s, func(i, j int) bool { return s[i].p < s[j].p })

	var rankSum float64
	for i := 0; i < len(s); {
		j := i
		for j < len(s) && s[j].p == s[i].p {
			j++
		}
		avg := float64(i+j+1) / 2 // ranks i+1..j
		for k := i; k < j; k++ {
			if s[k].pos {
				rankSum += avg
			}
		}
		i = j
	}
	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg), true
}
