package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"conversion-insights-go/internal/types"
)

var assessedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestLabel(t *testing.T) {
	l := NewLabeler(DefaultWindow)
	tests := []struct {
		name  string
		email string
		appts []types.Appointment
		want  int
	}{
		{name: "no appointments", email: "a@x.com", want: 0},
		{
			name:  "no matching email",
			email: "a@x.com",
			appts: []types.Appointment{{ClientEmail: "b@x.com", CreatedAt: assessedAt.Add(time.Hour)}},
			want:  0,
		},
		{
			name:  "case-insensitive match inside window",
			email: "Jane.Doe@Example.com",
			appts: []types.Appointment{{ClientEmail: "jane.doe@example.COM", CreatedAt: assessedAt.Add(48 * time.Hour)}},
			want:  1,
		},
		{
			name:  "same instant as assessment",
			email: "a@x.com",
			appts: []types.Appointment{{ClientEmail: "a@x.com", CreatedAt: assessedAt}},
			want:  1,
		},
		{
			name:  "exactly ninety days later",
			email: "a@x.com",
			appts: []types.Appointment{{ClientEmail: "a@x.com", CreatedAt: assessedAt.Add(90 * 24 * time.Hour)}},
			want:  1,
		},
		{
			name:  "one second past the window",
			email: "a@x.com",
			appts: []types.Appointment{{ClientEmail: "a@x.com", CreatedAt: assessedAt.Add(90*24*time.Hour + time.Second)}},
			want:  0,
		},
		{
			name:  "booked before the assessment",
			email: "a@x.com",
			appts: []types.Appointment{{ClientEmail: "a@x.com", CreatedAt: assessedAt.Add(-time.Second)}},
			want:  0,
		},
		{
			name:  "appointment without timestamp",
			email: "a@x.com",
			appts: []types.Appointment{{ClientEmail: "a@x.com"}},
			want:  0,
		},
		{
			name:  "any matching appointment in window",
			email: "a@x.com",
			appts: []types.Appointment{
				{ClientEmail: "a@x.com", CreatedAt: assessedAt.Add(-24 * time.Hour)},
				{ClientEmail: "a@x.com", CreatedAt: assessedAt.Add(200 * 24 * time.Hour)},
				{ClientEmail: "A@X.COM", CreatedAt: assessedAt.Add(10 * 24 * time.Hour)},
			},
			want: 1,
		},
		{
			name:  "missing email on both sides",
			email: "",
			appts: []types.Appointment{{CreatedAt: assessedAt.Add(4 * 24 * time.Hour)}},
			want:  0,
		},
		{
			name:  "blank email against blank client",
			email: "  ",
			appts: []types.Appointment{{ClientEmail: " ", CreatedAt: assessedAt.Add(time.Hour)}},
			want:  0,
		},
		{
			name:  "appointment without client email",
			email: "a@x.com",
			appts: []types.Appointment{{CreatedAt: assessedAt.Add(time.Hour)}},
			want:  0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, l.Label(tc.email, assessedAt, tc.appts))
		})
	}
}

func TestLabelDoesNotMutateAppointments(t *testing.T) {
	appts := []types.Appointment{{ClientEmail: "A@x.com", CreatedAt: assessedAt}}
	before := append([]types.Appointment(nil), appts...)
	NewLabeler(DefaultWindow).Label("a@x.com", assessedAt, appts)
	assert.Equal(t, before, appts)
}

func TestLabelerWindowIsConfigurable(t *testing.T) {
	appts := []types.Appointment{{ClientEmail: "a@x.com", CreatedAt: assessedAt.Add(10 * 24 * time.Hour)}}
	assert.Equal(t, 0, NewLabeler(7*24*time.Hour).Label("a@x.com", assessedAt, appts))
	assert.Equal(t, 1, NewLabeler(14*24*time.Hour).Label("a@x.com", assessedAt, appts))
	assert.Equal(t, DefaultWindow, NewLabeler(0).Window)
}

func TestIndexSkipsAppointmentsWithoutEmail(t *testing.T) {
	idx := indexAppointments([]types.Appointment{
		{CreatedAt: assessedAt},
		{ClientEmail: "  ", CreatedAt: assessedAt},
		{ClientEmail: "A@x.com", CreatedAt: assessedAt},
	})
	assert.Len(t, idx, 1)
	assert.Nil(t, idx.forEmail(""))
	assert.Len(t, idx.forEmail(" a@X.com "), 1)
}
