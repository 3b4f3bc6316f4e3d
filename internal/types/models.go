package types

import "time"

// UnknownCategory is the category of a record that lacks the field. A field that
// is present but null has no category at all (NoCategory) and encodes as zeros.
const (
	UnknownCategory = "unknown"
	NoCategory      = ""
)

// Assessment is the typed view of an assessment record. Every field carries its
// default when the source field is missing or malformed.
type Assessment struct {
	Email        string
	CreatedAt    time.Time
	HasCreatedAt bool

	AgeBracket       string
	HealthcareWorker string
	HealthcareYears  string

	NumChallenges int
	NumFamiliar   int
	HasGoals      bool

	ScoredChakras       map[string]any
	ScoredLifeQuadrants map[string]any

	FocusChakra string
	Archetype   string
}

// NewAssessment reads an assessment out of a raw record. A createdAt value that is
// present but unreadable is the only field that is reported as an error.
func NewAssessment(r Record) (Assessment, error) {
	a := Assessment{
		Email:            r.StringOr("email", ""),
		AgeBracket:       r.StringOr("ageBracket", ""),
		HealthcareWorker: r.StringOr("healthcareWorker", ""),
		HealthcareYears:  r.StringOr("healthcareYears", ""),
		NumChallenges:    r.ListLen("challenges"),
		NumFamiliar:      r.ListLen("familiarWith"),
		HasGoals:         r.Truthy("goals"),
		FocusChakra:      r.Category("focusChakra"),
		Archetype:        r.Category("archetype"),
	}
	a.ScoredChakras, _ = r.Map("scoredChakras")
	a.ScoredLifeQuadrants, _ = r.Map("scoredLifeQuadrants")

	t, ok, err := r.Time("createdAt")
	if err != nil {
		return a, err
	}
	a.CreatedAt, a.HasCreatedAt = t, ok
	return a, nil
}

// Appointment carries the two fields used for labeling.
type Appointment struct {
	ClientEmail string    `json:"clientEmail"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewAppointment reads an appointment out of a raw record. A missing or unreadable
// createdAt leaves the zero time, which never falls inside a conversion window.
func NewAppointment(r Record) Appointment {
	t, _, _ := r.Time("createdAt")
	return Appointment{
		ClientEmail: r.StringOr("clientEmail", ""),
		CreatedAt:   t,
	}
}

// Risk levels bucket a conversion probability for the people acting on it.
const (
	RiskHigh       = "High"
	RiskMediumHigh = "Medium-High"
	RiskMedium     = "Medium"
	RiskLow        = "Low"
)
