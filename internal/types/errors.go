package types

import "errors"

var (
	// ErrInvalidInput marks a prediction request that is not a record (or not a list of records).
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedRecord marks a single stored record that cannot be turned into a row.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrArtifactMismatch marks a trained artifact that is missing parts or is inconsistent.
	ErrArtifactMismatch = errors.New("artifact mismatch")
	// ErrUpstreamUnavailable marks a record store that could not be read.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	ErrEmptyDataset = errors.New("empty dataset")
	ErrSingleClass  = errors.New("training labels contain a single class")
)
