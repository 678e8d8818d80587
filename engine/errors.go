/*
errors.go - Shared error values for the engine and its collaborators

The core itself resolves arithmetic edge cases by policy substitution
(SafeDiv, nil results, degraded settlements) and does not error. These
values are for the boundaries around it: ingestion validation, the
tier-schedule factory, and stores.
*/
package engine

import "errors"

var (
	// ErrInvalidPeriod is returned for a window whose end precedes its start.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrSnapshotNotFound is returned by snapshot stores when a creator
	// has no bonus snapshot for the requested month. Settlement treats
	// this as "no tier data" and degrades, it is not a failure there.
	ErrSnapshotNotFound = errors.New("bonus snapshot not found")

	// ErrNegativeAmount marks a record with negative spend/gmv/earning.
	ErrNegativeAmount = errors.New("negative monetary amount")

	// ErrMissingDate marks a record with a zero date.
	ErrMissingDate = errors.New("record has no date")

	// ErrMissingIdentity marks a record without creator or content name.
	ErrMissingIdentity = errors.New("record missing creator or content")
)
