package processor

import (
	"context"
	"fmt"

	"conversion-insights-go/internal/types"
)

// PredictBatch scores a list of assessments in order. The request must be a JSON
// array; an item that cannot be scored is logged and left out of the result.
func (p *Predictor) PredictBatch(ctx context.Context, raw any) ([]Prediction, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array of assessments, got %T", types.ErrInvalidInput, raw)
	}

	out := make([]Prediction, 0, len(items))
	for i, item := range items {
		pred, err := p.predictItem(ctx, item)
		if err != nil {
			p.metrics.BatchItemSkipped()
			p.log.WithError(err).WithField("index", i).Warn("skipping batch item")
			continue
		}
		out = append(out, pred)
	}
	return out, nil
}

func (p *Predictor) predictItem(ctx context.Context, item any) (pred Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", types.ErrMalformedRecord, r)
		}
	}()
	pred, err = p.Predict(ctx, item)
	if err != nil {
		return pred, err
	}
	// Predict has already accepted item as an object
	rec, _ := types.AsRecord(item)
	pred.Email = rec.StringOr("email", types.UnknownCategory)
	return pred, nil
}
