// Package store provides an in-memory engine.Store implementation for
// tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tecdo/creator-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	records   []engine.AdRecord
	snapshots map[snapshotKey]engine.CreatorBonusSnapshot
}

type snapshotKey struct {
	Creator string
	Month   string
}

func NewMemory() *Memory {
	return &Memory{snapshots: make(map[snapshotKey]engine.CreatorBonusSnapshot)}
}

var _ engine.Store = (*Memory)(nil)

func (m *Memory) SaveRecords(_ context.Context, records []engine.AdRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *Memory) Records(_ context.Context) ([]engine.AdRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.AdRecord, len(m.records))
	copy(out, m.records)
	sortByDate(out)
	return out, nil
}

func (m *Memory) RecordsInRange(_ context.Context, from, to engine.Day) ([]engine.AdRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	window := engine.Period{Start: from, End: to}
	var out []engine.AdRecord
	for _, r := range m.records {
		if window.Contains(r.Date) {
			out = append(out, r)
		}
	}
	sortByDate(out)
	return out, nil
}

func (m *Memory) SaveSnapshot(_ context.Context, snapshot engine.CreatorBonusSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshotKey{snapshot.Creator, snapshot.DataMonth.String()}] = snapshot
	return nil
}

func (m *Memory) Snapshot(_ context.Context, creator string, month engine.Month) (engine.CreatorBonusSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.snapshots[snapshotKey{creator, month.String()}]
	if !ok {
		return engine.CreatorBonusSnapshot{}, engine.ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (m *Memory) SnapshotsForMonth(_ context.Context, month engine.Month) ([]engine.CreatorBonusSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.CreatorBonusSnapshot
	for key, snapshot := range m.snapshots {
		if key.Month == month.String() {
			out = append(out, snapshot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Creator < out[j].Creator })
	return out, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	m.snapshots = make(map[snapshotKey]engine.CreatorBonusSnapshot)
	return nil
}

// sortByDate keeps store reads in the same order sqlite would return.
func sortByDate(records []engine.AdRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}
