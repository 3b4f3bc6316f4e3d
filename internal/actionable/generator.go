package actionable

import (
	"fmt"

	"conversion-insights-go/internal/types"
)

type ActionCard struct {
	Insight string `json:"insight"`
	Action  string `json:"action"`
	Impact  string `json:"impact"`
}

// Generate turns a prediction into the follow-up the practice should take.
func Generate(level string, probability float64) ActionCard {
	pct := probability * 100
	switch level {
	case types.RiskHigh:
		return ActionCard{
			Insight: fmt.Sprintf("Very likely to book (%.0f%%)", pct),
			Action:  "Send the booking link while interest is high",
			Impact:  "Low effort, fast conversion",
		}
	case types.RiskMediumHigh:
		return ActionCard{
			Insight: fmt.Sprintf("Likely to book (%.0f%%)", pct),
			Action:  "Send a follow-up message with available appointment slots",
			Impact:  "Keeps momentum toward a first appointment",
		}
	case types.RiskMedium:
		return ActionCard{
			Insight: fmt.Sprintf("May book with follow-up (%.0f%%)", pct),
			Action:  "Schedule a personal follow-up call or text within a few days",
			Impact:  "Moves an undecided client toward booking",
		}
	default:
		return ActionCard{
			Insight: fmt.Sprintf("Unlikely to book without intervention (%.0f%%)", pct),
			Action:  "Add to a nurture sequence focused on the client's focus area",
			Impact:  "Low immediate conversion; builds longer-term interest",
		}
	}
}
