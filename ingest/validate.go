/*
Package ingest validates and normalizes raw advertising rows.

PURPOSE:
  Ad rows arrive from spreadsheet exports and platform APIs with messy
  statuses, missing fields, and occasional negative numbers from refund
  adjustments. This package is the gate between that mess and the
  calculation core: everything past Clean() satisfies the invariants the
  engine assumes (non-negative money, a date, an identity).

VALIDATION VS. NORMALIZATION:
  Statuses are normalized (case, synonyms), never rejected - an unknown
  status becomes StatusUnknown and the row still counts toward spend.
  Monetary and identity problems reject the row: a negative spend is a
  refund event, not an ad metric, and belongs in a different pipeline.

USAGE:
  good, bad := ingest.Clean(rows)
  store.SaveRecords(ctx, good)
  for _, reject := range bad {
      log.Printf("rejected row %d: %v", reject.Index, reject.Err)
  }

SEE ALSO:
  - engine/types.go: AdRecord, the validated shape
  - engine/errors.go: the sentinels RecordError wraps
*/
package ingest

import (
	"fmt"
	"strings"

	"github.com/tecdo/creator-engine/engine"
)

// RecordError describes why one row was rejected. Index is the row's
// position in the input batch, for operator-facing reject reports.
type RecordError struct {
	Index   int
	Creator string
	Content string
	Err     error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("row %d (%s/%s): %v", e.Index, e.Creator, e.Content, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// NormalizeStatus maps the status spellings seen in the wild onto the
// engine's enum. Unknown spellings map to StatusUnknown rather than
// erroring: a typo in a status column should not drop a day of spend.
func NormalizeStatus(raw string) engine.AdStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "running", "active", "live", "投放中":
		return engine.StatusRunning
	case "paused", "pause", "暂停":
		return engine.StatusPaused
	case "stopped", "stop", "ended", "closed", "已结束":
		return engine.StatusStopped
	default:
		return engine.StatusUnknown
	}
}

// Validate checks one record against the engine's input invariants.
// It returns the first violation found; rows are small enough that
// collecting all violations isn't worth the API weight.
func Validate(r engine.AdRecord) error {
	if r.Date.IsZero() {
		return engine.ErrMissingDate
	}
	if strings.TrimSpace(r.Creator) == "" || strings.TrimSpace(r.Content) == "" {
		return engine.ErrMissingIdentity
	}
	if r.Spend.IsNegative() || r.GMV.IsNegative() || r.Earning.IsNegative() {
		return engine.ErrNegativeAmount
	}
	return nil
}

// Clean partitions a batch into valid records and rejects. Valid records
// come back with trimmed identities and a normalized status; input order
// is preserved on both sides.
func Clean(rows []engine.AdRecord) ([]engine.AdRecord, []RecordError) {
	var good []engine.AdRecord
	var bad []RecordError

	for i, r := range rows {
		if err := Validate(r); err != nil {
			bad = append(bad, RecordError{Index: i, Creator: r.Creator, Content: r.Content, Err: err})
			continue
		}
		r.Creator = strings.TrimSpace(r.Creator)
		r.Content = strings.TrimSpace(r.Content)
		r.Platform = strings.TrimSpace(r.Platform)
		r.Status = NormalizeStatus(string(r.Status))
		good = append(good, r)
	}
	return good, bad
}
