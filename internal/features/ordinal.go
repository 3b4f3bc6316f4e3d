package features

// Ordinal tables for the bracketed demographic answers. Anything else maps to 0.
var (
	ageBrackets = map[string]float64{
		"18-20": 1,
		"20-30": 2,
		"30-40": 3,
		"40-50": 4,
		"50+":   5,
	}
	experienceBrackets = map[string]float64{
		"0-3 years":   1,
		"4-7 years":   2,
		"8-11 years":  3,
		"12-16 years": 4,
		"16+ years":   5,
	}
)

// AgeBracketNumber maps an age bracket onto 1..5.
func AgeBracketNumber(bracket string) float64 {
	return ageBrackets[bracket]
}

// ExperienceNumber maps a years-of-experience bracket onto 1..5.
func ExperienceNumber(bracket string) float64 {
	return experienceBrackets[bracket]
}
