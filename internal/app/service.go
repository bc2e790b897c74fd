// Package app runs the once-per-day replay-or-draw decision.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dailyboss/internal/adapters/history"
	"github.com/okian/dailyboss/internal/domain/catalog"
	"github.com/okian/dailyboss/internal/domain/exclusion"
	"github.com/okian/dailyboss/internal/domain/model"
	"github.com/okian/dailyboss/internal/domain/selector"
	"github.com/okian/dailyboss/pkg/logger"
	"github.com/okian/dailyboss/pkg/metrics"
)

// Defaults applied when no option overrides them.
const (
	DefaultTotalResin    = 200
	DefaultBossResinCost = 40
	DefaultWindowDays    = 7
	DefaultRetentionDays = 7
)

// Locker serialises runs that share one history store. The returned
// function releases the lock.
type Locker interface {
	Lock(ctx context.Context) (func(), error)
}

// DailyResult is the outcome of one run.
type DailyResult struct {
	// Date is the draw_date of the returned picks.
	Date time.Time
	// Picks in the order they were drawn.
	Picks []model.Pick
	// Replayed is true when today's picks were read back, not drawn.
	Replayed bool
	// RunID of the run that produced the picks; empty for rows written
	// before run ids were tracked.
	RunID string
	// HistorySince is the oldest day in the store, nil when unknown.
	HistorySince *time.Time
}

// Service implements the daily picker.
type Service struct {
	mu    sync.RWMutex
	state State

	// Core components
	catalog  *catalog.Catalog
	store    history.Store
	selector *selector.Selector
	locker   Locker

	// Configuration
	totalResin    int
	bossResinCost int
	maxRepeats    int
	windowDays    int
	retentionDays int
	seed          int64
	now           func() time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQuota sets the resin budget and per-boss cost the daily quota is
// derived from. A non-positive cost is ignored.
func WithQuota(totalResin, bossResinCost int) Option {
	return func(s *Service) {
		if totalResin >= 0 && bossResinCost > 0 {
			s.totalResin = totalResin
			s.bossResinCost = bossResinCost
		}
	}
}

// WithMaxRepeats sets the rolling repeat cap.
func WithMaxRepeats(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRepeats = n
		}
	}
}

// WithWindowDays sets the rolling window length.
func WithWindowDays(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.windowDays = n
		}
	}
}

// WithRetentionDays sets how many days of history survive pruning.
func WithRetentionDays(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.retentionDays = n
		}
	}
}

// WithClock replaces time.Now, which decides the calendar day.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSeed makes draws reproducible. Zero seeds from the clock.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithLocker guards each run with l.
func WithLocker(l Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// New constructs a Service over cat and store.
func New(cat *catalog.Catalog, store history.Store, opts ...Option) (*Service, error) {
	if cat == nil {
		return nil, ErrNilCatalog
	}
	if store == nil {
		return nil, ErrNilStore
	}

	s := &Service{
		state:         StateNotStartedToday,
		catalog:       cat,
		store:         store,
		totalResin:    DefaultTotalResin,
		bossResinCost: DefaultBossResinCost,
		maxRepeats:    selector.DefaultMaxRepeats,
		windowDays:    DefaultWindowDays,
		retentionDays: DefaultRetentionDays,
		now:           time.Now,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.selector = selector.New(cat, store,
		selector.WithMaxRepeats(s.maxRepeats),
		selector.WithSeed(s.seed),
		selector.WithLogger(s.logger),
	)
	return s, nil
}

// Quota is the number of picks a day allows: floor(totalResin / bossResinCost).
func Quota(totalResin, bossResinCost int) int {
	if bossResinCost <= 0 || totalResin <= 0 {
		return 0
	}
	return totalResin / bossResinCost
}

// Quota returns the configured daily quota.
func (s *Service) Quota() int { return Quota(s.totalResin, s.bossResinCost) }

// State returns the lifecycle state reached by the latest run.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) setState(ctx context.Context, st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.logger.Debug(ctx, "state changed", logger.String("state", st.String()))
}

// Run produces today's picks: it replays stored rows when today was already
// drawn, otherwise it prunes old history and draws up to the quota.
// Store failures other than lock acquisition degrade to empty history.
func (s *Service) Run(ctx context.Context) (DailyResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRunDuration(float64(time.Since(start).Milliseconds()))
	}()

	if s.locker != nil {
		release, err := s.locker.Lock(ctx)
		if err != nil {
			return DailyResult{}, fmt.Errorf("%w: %w", ErrLock, err)
		}
		defer release()
	}

	today := model.Day(s.now())

	var res DailyResult
	if rows := s.todaysDraws(ctx, today); len(rows) > 0 {
		res = s.replay(ctx, rows)
	} else {
		s.setState(ctx, StateNotStartedToday)
		s.prune(ctx, today)
		res = s.draw(ctx, today)
	}
	res.HistorySince = s.historySince(ctx)
	s.setState(ctx, StateCompleteToday)

	metrics.UpdatePicks(len(res.Picks))
	return res, nil
}

func (s *Service) replay(ctx context.Context, rows []model.DrawRecord) DailyResult {
	res := DailyResult{
		Date:     rows[0].DrawDate,
		Picks:    make([]model.Pick, 0, len(rows)),
		Replayed: true,
		RunID:    rows[0].RunID,
	}
	for _, rec := range rows {
		pick := model.PickOf(rec)
		if pick.Region == "" {
			if it, ok := s.catalog.Lookup(rec.ItemName); ok {
				pick.Region = it.Region
			}
		}
		res.Picks = append(res.Picks, pick)
	}

	metrics.RecordReplay()
	s.logger.Info(ctx, "today already drawn; replaying stored picks",
		logger.String("date", model.FormatDate(res.Date)),
		logger.Int("picks", len(res.Picks)),
	)
	return res
}

func (s *Service) draw(ctx context.Context, today time.Time) DailyResult {
	s.setState(ctx, StateInProgress)

	quota := s.Quota()
	metrics.UpdateQuota(quota)

	res := DailyResult{
		Date:  today,
		Picks: make([]model.Pick, 0, quota),
		RunID: uuid.NewString(),
	}
	excluded := exclusion.New(exclusion.WithCapacity(quota))

	for len(res.Picks) < quota {
		counts := s.recentCounts(ctx, today)
		stamp := selector.Stamp{Date: today, RunID: res.RunID, Seq: len(res.Picks) + 1}

		item, stage, ok := s.selector.Draw(ctx, counts, excluded, stamp)
		if !ok {
			metrics.RecordExhausted()
			s.logger.Warn(ctx, "catalog exhausted before quota was reached",
				logger.Int("quota", quota),
				logger.Int("picks", len(res.Picks)),
			)
			break
		}
		excluded.SeenAndRecord(ctx, item.Name)
		res.Picks = append(res.Picks, model.Pick{Region: item.Region, Name: item.Name})

		s.logger.Debug(ctx, "picked",
			logger.String("boss", item.Name),
			logger.String("region", item.Region),
			logger.String("stage", stage.String()),
		)
	}

	s.logger.Info(ctx, "daily picks drawn",
		logger.String("date", model.FormatDate(today)),
		logger.String("run_id", res.RunID),
		logger.Int("quota", quota),
		logger.Int("picks", len(res.Picks)),
	)
	return res
}

func (s *Service) todaysDraws(ctx context.Context, today time.Time) []model.DrawRecord {
	rows, err := s.store.TodaysDraws(ctx, today)
	if err != nil {
		s.degraded(ctx, history.OpTodaysDraws, err)
		return nil
	}
	return rows
}

func (s *Service) recentCounts(ctx context.Context, today time.Time) map[string]int {
	counts, err := s.store.RecentCounts(ctx, s.windowDays, today)
	if err != nil {
		s.degraded(ctx, history.OpRecentCounts, err)
		return map[string]int{}
	}
	return counts
}

func (s *Service) prune(ctx context.Context, today time.Time) {
	n, err := s.store.Prune(ctx, s.retentionDays, today)
	if err != nil {
		s.degraded(ctx, history.OpPrune, err)
		return
	}
	if n > 0 {
		s.logger.Info(ctx, "pruned old history",
			logger.Int64("rows", n),
			logger.Int("retention_days", s.retentionDays),
		)
	}
}

func (s *Service) historySince(ctx context.Context) *time.Time {
	day, ok, err := s.store.EarliestDate(ctx)
	if err != nil {
		s.degraded(ctx, history.OpEarliestDate, err)
		return nil
	}
	if !ok {
		return nil
	}
	return &day
}

func (s *Service) degraded(ctx context.Context, op string, err error) {
	s.logger.Warn(ctx, "history unavailable; continuing without it",
		logger.String("operation", op),
		logger.Error(err),
	)
}
