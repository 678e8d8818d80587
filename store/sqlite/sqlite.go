/*
Package sqlite provides a SQLite-backed implementation of engine.Store.

PURPOSE:
  Persists daily ad records and monthly bonus snapshots using SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  ad_records:      Daily advertising facts, append-style
  bonus_snapshots: One row per creator per data month; the tier ladder
                   is stored as the factory's JSON shape

DECIMALS:
  Monetary columns are TEXT holding exact decimal strings. SQLite's
  REAL is a float64 and would reintroduce the rounding the engine's
  decimal arithmetic exists to avoid.

INDEXES:
  - idx_ad_records_date:          range queries for reporting windows
  - idx_ad_records_creator_date:  per-creator progress lookups
  - idx_bonus_snapshots_month:    month-wide settlement loads

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/creator.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
  - factory/schedule.go: The JSON shape stored in tiers_json
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/tecdo/creator-engine/engine"
	"github.com/tecdo/creator-engine/factory"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ engine.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Daily advertising facts
	CREATE TABLE IF NOT EXISTS ad_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		creator TEXT NOT NULL,
		content TEXT NOT NULL,
		platform TEXT,
		category TEXT,
		theme TEXT,
		spend TEXT NOT NULL,
		gmv TEXT NOT NULL,
		earning TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ad_records_date
		ON ad_records(date);
	CREATE INDEX IF NOT EXISTS idx_ad_records_creator_date
		ON ad_records(creator, date);
	CREATE INDEX IF NOT EXISTS idx_ad_records_content
		ON ad_records(content);

	-- Monthly bonus snapshots, one per creator per data month
	CREATE TABLE IF NOT EXISTS bonus_snapshots (
		creator TEXT NOT NULL,
		data_month TEXT NOT NULL,
		total_shipped_revenue TEXT NOT NULL,
		shipped_rev_organic TEXT NOT NULL,
		shipped_rev_ads TEXT NOT NULL,
		commission_organic TEXT NOT NULL,
		commission_ads TEXT NOT NULL,
		tiers_json TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (creator, data_month)
	);

	CREATE INDEX IF NOT EXISTS idx_bonus_snapshots_month
		ON bonus_snapshots(data_month);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE (engine.RecordStore interface)
// =============================================================================

// SaveRecords appends a batch of validated records atomically.
func (s *Store) SaveRecords(ctx context.Context, records []engine.AdRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
		INSERT INTO ad_records
		(date, creator, content, platform, category, theme, spend, gmv, earning, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC().Format(time.RFC3339)
	for _, r := range records {
		_, err := sqlTx.ExecContext(ctx, query,
			r.Date.String(),
			r.Creator,
			r.Content,
			r.Platform,
			r.Category,
			r.Theme,
			r.Spend.String(),
			r.GMV.String(),
			r.Earning.String(),
			string(r.Status),
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
	}

	return sqlTx.Commit()
}

// Records returns all records, ordered by date ascending.
func (s *Store) Records(ctx context.Context) ([]engine.AdRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT date, creator, content, platform, category, theme, spend, gmv, earning, status
		FROM ad_records
		ORDER BY date ASC, id ASC
	`
	return s.queryRecords(ctx, query)
}

// RecordsInRange returns records with date in [from, to], ordered by
// date ascending.
func (s *Store) RecordsInRange(ctx context.Context, from, to engine.Day) ([]engine.AdRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT date, creator, content, platform, category, theme, spend, gmv, earning, status
		FROM ad_records
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC, id ASC
	`
	return s.queryRecords(ctx, query, from.String(), to.String())
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]engine.AdRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []engine.AdRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (engine.AdRecord, error) {
	var (
		r                     engine.AdRecord
		date                  string
		spend, gmv, earning   string
		platform, category    sql.NullString
		theme                 sql.NullString
		status                string
	)

	err := rows.Scan(&date, &r.Creator, &r.Content, &platform, &category, &theme,
		&spend, &gmv, &earning, &status)
	if err != nil {
		return r, fmt.Errorf("failed to scan record: %w", err)
	}

	r.Date, err = engine.ParseDay(date)
	if err != nil {
		return r, fmt.Errorf("corrupt date column: %w", err)
	}
	r.Platform = platform.String
	r.Category = category.String
	r.Theme = theme.String
	r.Status = engine.AdStatus(status)

	if r.Spend, err = parseDecimal("spend", spend); err != nil {
		return r, err
	}
	if r.GMV, err = parseDecimal("gmv", gmv); err != nil {
		return r, err
	}
	if r.Earning, err = parseDecimal("earning", earning); err != nil {
		return r, err
	}
	return r, nil
}

func parseDecimal(column, s string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt %s column %q: %w", column, s, err)
	}
	return value, nil
}

// =============================================================================
// SNAPSHOT STORE (engine.SnapshotStore interface)
// =============================================================================

// scheduleFactory handles the tiers_json column round-trip. The stored
// shape is the same one the upload endpoint accepts, so a raw row is
// directly re-playable through the factory.
var scheduleFactory = factory.NewScheduleFactory()

// SaveSnapshot upserts the snapshot for its creator + data month.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot engine.CreatorBonusSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tiersJSON, err := json.Marshal(scheduleFactory.ToJSON(snapshot).Tiers)
	if err != nil {
		return fmt.Errorf("failed to encode tiers: %w", err)
	}

	query := `
		INSERT INTO bonus_snapshots
		(creator, data_month, total_shipped_revenue, shipped_rev_organic, shipped_rev_ads, commission_organic, commission_ads, tiers_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(creator, data_month) DO UPDATE SET
			total_shipped_revenue = excluded.total_shipped_revenue,
			shipped_rev_organic = excluded.shipped_rev_organic,
			shipped_rev_ads = excluded.shipped_rev_ads,
			commission_organic = excluded.commission_organic,
			commission_ads = excluded.commission_ads,
			tiers_json = excluded.tiers_json,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		snapshot.Creator,
		snapshot.DataMonth.String(),
		snapshot.TotalShippedRevenue.String(),
		snapshot.ShippedRevOrganic.String(),
		snapshot.ShippedRevAds.String(),
		snapshot.CommissionOrganic.String(),
		snapshot.CommissionAds.String(),
		string(tiersJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// Snapshot returns the snapshot for creator + month, or
// engine.ErrSnapshotNotFound.
func (s *Store) Snapshot(ctx context.Context, creator string, month engine.Month) (engine.CreatorBonusSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT creator, data_month, total_shipped_revenue, shipped_rev_organic, shipped_rev_ads, commission_organic, commission_ads, tiers_json
		FROM bonus_snapshots
		WHERE creator = ? AND data_month = ?
	`
	row := s.db.QueryRowContext(ctx, query, creator, month.String())
	snapshot, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return engine.CreatorBonusSnapshot{}, engine.ErrSnapshotNotFound
	}
	return snapshot, err
}

// SnapshotsForMonth returns every creator's snapshot for a month,
// ordered by creator name.
func (s *Store) SnapshotsForMonth(ctx context.Context, month engine.Month) ([]engine.CreatorBonusSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT creator, data_month, total_shipped_revenue, shipped_rev_organic, shipped_rev_ads, commission_organic, commission_ads, tiers_json
		FROM bonus_snapshots
		WHERE data_month = ?
		ORDER BY creator ASC
	`
	rows, err := s.db.QueryContext(ctx, query, month.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []engine.CreatorBonusSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (engine.CreatorBonusSnapshot, error) {
	var sj factory.ScheduleJSON
	var tiersJSON string

	err := row.Scan(&sj.Creator, &sj.DataMonth, &sj.TotalShippedRevenue,
		&sj.ShippedRevOrganic, &sj.ShippedRevAds, &sj.CommissionOrganic,
		&sj.CommissionAds, &tiersJSON)
	if err != nil {
		return engine.CreatorBonusSnapshot{}, err
	}
	if err := json.Unmarshal([]byte(tiersJSON), &sj.Tiers); err != nil {
		return engine.CreatorBonusSnapshot{}, fmt.Errorf("corrupt tiers_json column: %w", err)
	}

	snapshot, err := scheduleFactory.FromJSON(sj)
	if err != nil {
		return engine.CreatorBonusSnapshot{}, fmt.Errorf("corrupt snapshot row: %w", err)
	}
	return snapshot, nil
}

// =============================================================================
// HOUSEKEEPING
// =============================================================================

// Reset clears all stored data. Dev/demo only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"ad_records", "bonus_snapshots"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}
