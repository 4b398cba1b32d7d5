package sampler

import "errors"

var (
	// ErrSample is returned when a source cannot be read or its reading rejected.
	ErrSample = errors.New("sampler: sample failed")

	// ErrDeliver is returned when a sink fails to take drained changes.
	ErrDeliver = errors.New("sampler: delivery failed")
)
