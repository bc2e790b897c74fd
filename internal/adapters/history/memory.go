package history

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/dailyboss/internal/domain/model"
)

// MemoryStore keeps history in process memory. It is used for dry runs and
// tests; nothing survives the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.DrawRecord
}

// NewMemoryStore returns an empty in-memory store seeded with records.
func NewMemoryStore(records ...model.DrawRecord) *MemoryStore {
	s := &MemoryStore{}
	for _, rec := range records {
		rec.DrawDate = model.Day(rec.DrawDate)
		s.records = append(s.records, rec)
	}
	return s
}

// Initialize implements Store.
func (s *MemoryStore) Initialize(context.Context) error { return nil }

// RecordDraw implements Store.
func (s *MemoryStore) RecordDraw(_ context.Context, rec model.DrawRecord) error {
	if rec.ItemName == "" {
		return fmt.Errorf("%w: empty item name", ErrInvalidRecord)
	}
	rec.DrawDate = model.Day(rec.DrawDate)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// RecentCounts implements Store.
func (s *MemoryStore) RecentCounts(_ context.Context, windowDays int, asOf time.Time) (map[string]int, error) {
	start := windowStart(asOf, windowDays)

	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, rec := range s.records {
		if !rec.DrawDate.Before(start) {
			counts[rec.ItemName]++
		}
	}
	return counts, nil
}

// TodaysDraws implements Store.
func (s *MemoryStore) TodaysDraws(_ context.Context, asOf time.Time) ([]model.DrawRecord, error) {
	day := model.Day(asOf)

	s.mu.RLock()
	var out []model.DrawRecord
	for _, rec := range s.records {
		if rec.DrawDate.Equal(day) {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	// Each run's picks stay together, in draw order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RunID != out[j].RunID {
			return out[i].RunID < out[j].RunID
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

// EarliestDate implements Store.
func (s *MemoryStore) EarliestDate(context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.records) == 0 {
		return time.Time{}, false, nil
	}
	earliest := s.records[0].DrawDate
	for _, rec := range s.records[1:] {
		if rec.DrawDate.Before(earliest) {
			earliest = rec.DrawDate
		}
	}
	return earliest, true, nil
}

// Prune implements Store.
func (s *MemoryStore) Prune(_ context.Context, retainDays int, asOf time.Time) (int64, error) {
	cutoff := windowStart(asOf, retainDays)

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	var deleted int64
	for _, rec := range s.records {
		if rec.DrawDate.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return deleted, nil
}

// Len returns the number of stored rows.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
