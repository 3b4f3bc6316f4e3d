package pipeline

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"conversion-insights-go/internal/types"
)

// DefaultWindow is how long after an assessment a booking still counts as a conversion.
const DefaultWindow = 90 * 24 * time.Hour

// Labeler decides whether an assessment converted.
type Labeler struct {
	Window time.Duration
}

func NewLabeler(window time.Duration) Labeler {
	if window <= 0 {
		window = DefaultWindow
	}
	return Labeler{Window: window}
}

// Label returns 1 when an appointment for email was created within
// [at, at+Window], 0 otherwise. Emails match case-insensitively; an empty
// email on either side never matches.
func (l Labeler) Label(email string, at time.Time, appointments []types.Appointment) int {
	key := FoldEmail(email)
	if len(appointments) == 0 || key == "" {
		return 0
	}
	cutoff := at.Add(l.Window)
	for _, apt := range appointments {
		if k := FoldEmail(apt.ClientEmail); k == "" || k != key || apt.CreatedAt.IsZero() {
			continue
		}
		if !apt.CreatedAt.Before(at) && !apt.CreatedAt.After(cutoff) {
			return 1
		}
	}
	return 0
}

// FoldEmail trims and case-folds an address for matching. A Caser is stateful,
// so one is made per call.
func FoldEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// appointmentIndex groups appointments by folded client email.
type appointmentIndex map[string][]types.Appointment

func indexAppointments(appointments []types.Appointment) appointmentIndex {
	idx := make(appointmentIndex)
	for _, apt := range appointments {
		k := FoldEmail(apt.ClientEmail)
		if k == "" {
			continue
		}
		idx[k] = append(idx[k], apt)
	}
	return idx
}

func (idx appointmentIndex) forEmail(email string) []types.Appointment {
	k := FoldEmail(email)
	if k == "" {
		return nil
	}
	return idx[k]
}
