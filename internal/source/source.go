// Package source reads the raw assessment and appointment records the dataset
// is assembled from. Every implementation is read-only; retries live here and
// a read that still fails is reported as types.ErrUpstreamUnavailable.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"conversion-insights-go/internal/types"
)

type Source interface {
	// Assessments returns every assessment record in storage order. Items are
	// decoded JSON values; the assembler decides what is malformed.
	Assessments(ctx context.Context) ([]any, error)
	Appointments(ctx context.Context) ([]types.Appointment, error)
}

// Appointments turns decoded documents into appointments. Documents that are
// not objects cannot name a client and are dropped.
func Appointments(docs []any) []types.Appointment {
	out := make([]types.Appointment, 0, len(docs))
	for _, d := range docs {
		rec, err := types.AsRecord(d)
		if err != nil {
			continue
		}
		out = append(out, types.NewAppointment(rec))
	}
	return out
}

func newBackOff(ctx context.Context, maxElapsed time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed
	return backoff.WithContext(bo, ctx)
}

func unavailable(what string, err error) error {
	return fmt.Errorf("%w: %s: %v", types.ErrUpstreamUnavailable, what, err)
}
