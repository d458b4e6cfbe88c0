package review

import "errors"

var (
	// ErrSpotNotFound is returned when an aggregate update targets a spot
	// document that does not exist. Never retried.
	ErrSpotNotFound = errors.New("tastetrail: spot not found")

	// ErrAggregateExhausted is returned when the aggregate update loses the
	// conditional-write race on every attempt. The review itself is already
	// durably saved when this surfaces; the spot's aggregates must be
	// reconciled out-of-band.
	ErrAggregateExhausted = errors.New("tastetrail: aggregate update retries exhausted")
)
