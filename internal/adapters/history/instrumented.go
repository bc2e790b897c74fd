package history

import (
	"context"
	"time"

	"github.com/okian/dailyboss/internal/domain/model"
	"github.com/okian/dailyboss/pkg/metrics"
)

const nanosecondsPerMillisecond = 1e6

// instrumented records latency and failures of every call on the wrapped
// store. It does not alter results or errors.
type instrumented struct {
	next Store
}

// Instrument wraps s with Prometheus latency and error metrics.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{next: s}
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Nanoseconds())/nanosecondsPerMillisecond)
	if err != nil {
		metrics.RecordStoreError(op)
	}
}

func (s *instrumented) Initialize(ctx context.Context) (err error) {
	defer func(start time.Time) { observe(OpInitialize, start, err) }(time.Now())
	return s.next.Initialize(ctx)
}

func (s *instrumented) RecordDraw(ctx context.Context, rec model.DrawRecord) (err error) {
	defer func(start time.Time) { observe(OpRecordDraw, start, err) }(time.Now())
	return s.next.RecordDraw(ctx, rec)
}

func (s *instrumented) RecentCounts(ctx context.Context, windowDays int, asOf time.Time) (_ map[string]int, err error) {
	defer func(start time.Time) { observe(OpRecentCounts, start, err) }(time.Now())
	return s.next.RecentCounts(ctx, windowDays, asOf)
}

func (s *instrumented) TodaysDraws(ctx context.Context, asOf time.Time) (_ []model.DrawRecord, err error) {
	defer func(start time.Time) { observe(OpTodaysDraws, start, err) }(time.Now())
	return s.next.TodaysDraws(ctx, asOf)
}

func (s *instrumented) EarliestDate(ctx context.Context) (_ time.Time, _ bool, err error) {
	defer func(start time.Time) { observe(OpEarliestDate, start, err) }(time.Now())
	return s.next.EarliestDate(ctx)
}

func (s *instrumented) Prune(ctx context.Context, retainDays int, asOf time.Time) (_ int64, err error) {
	defer func(start time.Time) { observe(OpPrune, start, err) }(time.Now())
	n, err := s.next.Prune(ctx, retainDays, asOf)
	if err == nil {
		metrics.AddPruned(n)
	}
	return n, err
}
