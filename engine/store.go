/*
store.go - Persistence interfaces for ad records and bonus snapshots

PURPOSE:
  The engine is stateless; these interfaces are how the surrounding
  service keeps the data the engine computes over. Implementations:
  store/sqlite (production) and engine/store (in-memory, tests/dev).

CONTRACTS:
  - Records are append-style daily facts; SaveRecords adds, it does not
    dedupe (re-ingesting a day is the ingestion collaborator's concern).
  - Snapshots are one-per-creator-per-month; SaveSnapshot upserts.
  - Snapshot() returns ErrSnapshotNotFound when absent - callers that
    settle treat that as "no tier data", not an error.
*/
package engine

import "context"

// RecordStore persists raw daily ad records.
type RecordStore interface {
	// SaveRecords appends a batch of validated records.
	SaveRecords(ctx context.Context, records []AdRecord) error

	// Records returns all records, ordered by date ascending.
	Records(ctx context.Context) ([]AdRecord, error)

	// RecordsInRange returns records with date in [from, to], ordered by
	// date ascending.
	RecordsInRange(ctx context.Context, from, to Day) ([]AdRecord, error)
}

// SnapshotStore persists monthly bonus snapshots per creator.
type SnapshotStore interface {
	// SaveSnapshot upserts the snapshot for its creator + data month.
	SaveSnapshot(ctx context.Context, snapshot CreatorBonusSnapshot) error

	// Snapshot returns the snapshot for creator + month, or
	// ErrSnapshotNotFound.
	Snapshot(ctx context.Context, creator string, month Month) (CreatorBonusSnapshot, error)

	// SnapshotsForMonth returns every creator's snapshot for a month.
	SnapshotsForMonth(ctx context.Context, month Month) ([]CreatorBonusSnapshot, error)
}

// Store combines both persistence surfaces plus housekeeping used by the
// demo scenario loader.
type Store interface {
	RecordStore
	SnapshotStore

	// Reset clears all stored data. Dev/demo only.
	Reset(ctx context.Context) error
}
