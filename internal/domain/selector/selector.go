// Package selector performs one constrained weighted draw from the catalog.
package selector

import (
	"context"
	"math/rand"
	"time"

	"github.com/okian/dailyboss/internal/domain/catalog"
	"github.com/okian/dailyboss/internal/domain/exclusion"
	"github.com/okian/dailyboss/internal/domain/model"
	"github.com/okian/dailyboss/pkg/logger"
	"github.com/okian/dailyboss/pkg/metrics"
)

// DefaultMaxRepeats is the rolling cap when none is configured.
const DefaultMaxRepeats = 3

// Stage tells which candidate set a draw was made from.
type Stage int

const (
	// StageCapped: rolling cap and same-day exclusion both applied.
	StageCapped Stage = iota
	// StageRelaxed: rolling cap dropped, same-day exclusion kept.
	StageRelaxed
	// StageExhausted: every item was already drawn today.
	StageExhausted
)

func (s Stage) String() string {
	switch s {
	case StageCapped:
		return "capped"
	case StageRelaxed:
		return "relaxed"
	case StageExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Recorder persists a successful pick.
type Recorder interface {
	RecordDraw(ctx context.Context, rec model.DrawRecord) error
}

// Stamp identifies where a pick lands in the history log.
type Stamp struct {
	Date  time.Time
	RunID string
	Seq   int
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithMaxRepeats sets the rolling cap. Non-positive values are ignored.
func WithMaxRepeats(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.maxRepeats = n
		}
	}
}

// WithSeed makes draws reproducible. Zero keeps the time-based seed.
func WithSeed(seed int64) Option {
	return func(s *Selector) {
		if seed != 0 {
			s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // sampling, not security
		}
	}
}

// WithRand supplies the random source directly.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// Selector draws one item at a time under the rolling cap and same-day
// exclusion. It is not safe for concurrent use.
type Selector struct {
	catalog    *catalog.Catalog
	recorder   Recorder
	maxRepeats int
	rng        *rand.Rand
	logger     logger.Logger
}

// New creates a Selector over cat that records picks through rec.
func New(cat *catalog.Catalog, rec Recorder, opts ...Option) *Selector {
	s := &Selector{
		catalog:    cat,
		recorder:   rec,
		maxRepeats: DefaultMaxRepeats,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // sampling, not security
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxRepeats returns the rolling cap in effect.
func (s *Selector) MaxRepeats() int { return s.maxRepeats }

// Candidates returns the items eligible for the next draw and the stage they
// come from. The rolling cap is relaxed before same-day exclusion, which is
// never relaxed.
func (s *Selector) Candidates(counts map[string]int, excluded exclusion.Set) ([]model.Item, Stage) {
	items := s.catalog.Items()

	capped := make([]model.Item, 0, len(items))
	for _, it := range items {
		if counts[it.Name] < s.maxRepeats && !excluded.Contains(it.Name) {
			capped = append(capped, it)
		}
	}
	if len(capped) > 0 {
		return capped, StageCapped
	}

	relaxed := make([]model.Item, 0, len(items))
	for _, it := range items {
		if !excluded.Contains(it.Name) {
			relaxed = append(relaxed, it)
		}
	}
	if len(relaxed) > 0 {
		return relaxed, StageRelaxed
	}
	return nil, StageExhausted
}

// Draw picks one item, records it and returns it. ok is false when the
// catalog is exhausted for today. A failed write is logged and swallowed;
// adding the pick to excluded is left to the caller.
func (s *Selector) Draw(ctx context.Context, counts map[string]int, excluded exclusion.Set, stamp Stamp) (model.Item, Stage, bool) {
	candidates, stage := s.Candidates(counts, excluded)
	if stage == StageExhausted {
		return model.Item{}, stage, false
	}
	if stage == StageRelaxed {
		s.logger.Warn(ctx, "rolling cap relaxed: every remaining item reached the repeat limit",
			logger.Int("max_repeats", s.maxRepeats),
			logger.Int("candidates", len(candidates)),
		)
	}

	picked := pickWeighted(s.rng, candidates)
	metrics.RecordDraw(picked.Region, stage.String())

	rec := model.DrawRecord{
		ItemName: picked.Name,
		Region:   picked.Region,
		DrawDate: model.Day(stamp.Date),
		RunID:    stamp.RunID,
		Seq:      stamp.Seq,
	}
	if err := s.recorder.RecordDraw(ctx, rec); err != nil {
		s.logger.Error(ctx, "failed to record draw; continuing without it",
			logger.String("boss", picked.Name),
			logger.String("region", picked.Region),
			logger.Error(err),
		)
	}
	return picked, stage, true
}

// pickWeighted chooses one item with probability weight/total. items must be
// non-empty with positive weights.
func pickWeighted(rng *rand.Rand, items []model.Item) model.Item {
	total := 0
	for _, it := range items {
		total += it.Weight
	}
	roll := rng.Intn(total)
	cumulative := 0
	for _, it := range items {
		cumulative += it.Weight
		if roll < cumulative {
			return it
		}
	}
	return items[len(items)-1]
}
