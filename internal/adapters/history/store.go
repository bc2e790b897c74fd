// Package history persists the append-only log of daily draws.
package history

import (
	"context"
	"time"

	"github.com/okian/dailyboss/internal/domain/model"
)

// Operation names, used for logging and metrics labels.
const (
	OpInitialize   = "initialize"
	OpRecordDraw   = "record_draw"
	OpRecentCounts = "recent_counts"
	OpTodaysDraws  = "todays_draws"
	OpEarliestDate = "earliest_date"
	OpPrune        = "prune"
)

// Store is the draw history log. Every method reports failures explicitly;
// callers decide whether a failure degrades or aborts the run.
type Store interface {
	// Initialize creates the schema if absent and migrates older layouts.
	Initialize(ctx context.Context) error

	// RecordDraw appends one row.
	RecordDraw(ctx context.Context, rec model.DrawRecord) error

	// RecentCounts returns item name -> number of rows with
	// draw_date >= asOf - windowDays, across all regions.
	RecentCounts(ctx context.Context, windowDays int, asOf time.Time) (map[string]int, error)

	// TodaysDraws returns the rows drawn on asOf grouped by run, each run in
	// the order its picks were drawn. Rows without a run id come first.
	TodaysDraws(ctx context.Context, asOf time.Time) ([]model.DrawRecord, error)

	// EarliestDate returns the minimum draw_date; ok is false when empty.
	EarliestDate(ctx context.Context) (day time.Time, ok bool, err error)

	// Prune deletes rows with draw_date < asOf - retainDays and returns the
	// number of rows removed.
	Prune(ctx context.Context, retainDays int, asOf time.Time) (int64, error)
}

// windowStart is the first calendar day inside a window of n days ending on
// asOf. Rows on windowStart are inside the window.
func windowStart(asOf time.Time, n int) time.Time {
	return model.AddDays(asOf, -n)
}
