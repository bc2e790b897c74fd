package app

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/dailyboss/internal/adapters/history"
	"github.com/okian/dailyboss/internal/domain/catalog"
	"github.com/okian/dailyboss/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2024, 5, 20, 21, 30, 0, 0, time.UTC)

func today() time.Time { return model.Day(fixedNow) }

func clock() time.Time { return fixedNow }

func smallCatalog(t *testing.T, names ...string) *catalog.Catalog {
	t.Helper()
	items := make([]model.Item, 0, len(names))
	for _, n := range names {
		items = append(items, model.Item{Name: n, Weight: 1})
	}
	c, err := catalog.New([]catalog.Region{{Name: "Test", Items: items}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func pickNames(picks []model.Pick) []string {
	out := make([]string, len(picks))
	for i, p := range picks {
		out[i] = p.Name
	}
	return out
}

func uniqueNames(picks []model.Pick) bool {
	seen := make(map[string]struct{}, len(picks))
	for _, p := range picks {
		if _, ok := seen[p.Name]; ok {
			return false
		}
		seen[p.Name] = struct{}{}
	}
	return true
}

func rowsOn(store history.Store, day time.Time) []model.DrawRecord {
	rows, _ := store.TodaysDraws(context.Background(), day)
	return rows
}

// failingStore fails reads and, optionally, writes.
type failingStore struct {
	*history.MemoryStore
	failWrites bool
}

var errUnavailable = errors.New("store unavailable")

func (f *failingStore) RecordDraw(ctx context.Context, rec model.DrawRecord) error {
	if f.failWrites {
		return errUnavailable
	}
	return f.MemoryStore.RecordDraw(ctx, rec)
}

func (f *failingStore) RecentCounts(context.Context, int, time.Time) (map[string]int, error) {
	return nil, errUnavailable
}

func (f *failingStore) TodaysDraws(context.Context, time.Time) ([]model.DrawRecord, error) {
	return nil, errUnavailable
}

func (f *failingStore) EarliestDate(context.Context) (time.Time, bool, error) {
	return time.Time{}, false, errUnavailable
}

func (f *failingStore) Prune(context.Context, int, time.Time) (int64, error) {
	return 0, errUnavailable
}

type fakeLocker struct {
	err      error
	locked   int
	released int
}

func (l *fakeLocker) Lock(context.Context) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked++
	return func() { l.released++ }, nil
}

func TestQuota(t *testing.T) {
	Convey("Quota is floor(total / cost)", t, func() {
		So(Quota(200, 40), ShouldEqual, 5)
		So(Quota(90, 40), ShouldEqual, 2)
		So(Quota(39, 40), ShouldEqual, 0)
		So(Quota(0, 40), ShouldEqual, 0)
		So(Quota(200, 0), ShouldEqual, 0)
	})
}

func TestNew(t *testing.T) {
	Convey("Given missing dependencies", t, func() {
		_, err := New(nil, history.NewMemoryStore())
		So(errors.Is(err, ErrNilCatalog), ShouldBeTrue)

		_, err = New(catalog.Default(), nil)
		So(errors.Is(err, ErrNilStore), ShouldBeTrue)
	})

	Convey("Given a new service", t, func() {
		svc, err := New(catalog.Default(), history.NewMemoryStore(), WithQuota(90, 40))
		So(err, ShouldBeNil)
		So(svc.State(), ShouldEqual, StateNotStartedToday)
		So(svc.Quota(), ShouldEqual, 2)
	})
}

func TestRun(t *testing.T) {
	Convey("Given an empty history and the default catalog", t, func() {
		ctx := context.Background()
		store := history.NewMemoryStore()
		svc, err := New(catalog.Default(), store, WithClock(clock), WithSeed(7))
		So(err, ShouldBeNil)

		res, err := svc.Run(ctx)
		So(err, ShouldBeNil)

		Convey("Then it draws a full quota of distinct picks for today", func() {
			So(res.Replayed, ShouldBeFalse)
			So(res.Date, ShouldEqual, today())
			So(res.RunID, ShouldNotBeEmpty)
			So(res.Picks, ShouldHaveLength, 5)
			So(uniqueNames(res.Picks), ShouldBeTrue)
			So(svc.State(), ShouldEqual, StateCompleteToday)
		})

		Convey("Then every pick is persisted in draw order", func() {
			rows := rowsOn(store, today())
			So(rows, ShouldHaveLength, 5)
			for i, rec := range rows {
				So(rec.Seq, ShouldEqual, i+1)
				So(rec.RunID, ShouldEqual, res.RunID)
				So(rec.ItemName, ShouldEqual, res.Picks[i].Name)
				So(rec.Region, ShouldEqual, res.Picks[i].Region)
			}
		})

		Convey("Then the history since line points at today", func() {
			So(res.HistorySince, ShouldNotBeNil)
			So(*res.HistorySince, ShouldEqual, today())
		})

		Convey("When it runs again the same day", func() {
			again, err := svc.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Then it replays the stored picks and writes nothing", func() {
				So(again.Replayed, ShouldBeTrue)
				So(again.Picks, ShouldResemble, res.Picks)
				So(again.RunID, ShouldEqual, res.RunID)
				So(again.Date, ShouldEqual, res.Date)
				So(store.Len(), ShouldEqual, 5)
			})
		})

		Convey("When a fresh process runs against the same store", func() {
			other, err := New(catalog.Default(), store, WithClock(clock), WithSeed(99))
			So(err, ShouldBeNil)
			again, err := other.Run(ctx)
			So(err, ShouldBeNil)
			So(again.Replayed, ShouldBeTrue)
			So(pickNames(again.Picks), ShouldResemble, pickNames(res.Picks))
			So(store.Len(), ShouldEqual, 5)
		})
	})
}

func TestRunExhaustion(t *testing.T) {
	Convey("Given a catalog smaller than the quota", t, func() {
		store := history.NewMemoryStore()
		svc, err := New(smallCatalog(t, "A", "B"), store, WithClock(clock), WithQuota(200, 40))
		So(err, ShouldBeNil)

		res, err := svc.Run(context.Background())
		So(err, ShouldBeNil)

		Convey("Then it stops early with every item once", func() {
			So(res.Picks, ShouldHaveLength, 2)
			So(uniqueNames(res.Picks), ShouldBeTrue)
			So(store.Len(), ShouldEqual, 2)
			So(svc.State(), ShouldEqual, StateCompleteToday)
		})
	})

	Convey("Given a zero quota", t, func() {
		store := history.NewMemoryStore()
		svc, err := New(catalog.Default(), store, WithClock(clock), WithQuota(30, 40))
		So(err, ShouldBeNil)

		res, err := svc.Run(context.Background())
		So(err, ShouldBeNil)
		So(res.Picks, ShouldBeEmpty)
		So(store.Len(), ShouldEqual, 0)
	})
}

func TestRunRollingCap(t *testing.T) {
	Convey("Given an item at the repeat cap inside the window", t, func() {
		var seed []model.DrawRecord
		for i := 1; i <= 3; i++ {
			seed = append(seed, model.DrawRecord{ItemName: "A", Region: "Test", DrawDate: model.AddDays(today(), -i)})
		}
		store := history.NewMemoryStore(seed...)
		svc, err := New(smallCatalog(t, "A", "B", "C"), store, WithClock(clock), WithQuota(80, 40))
		So(err, ShouldBeNil)

		res, err := svc.Run(context.Background())
		So(err, ShouldBeNil)

		Convey("Then the capped item is not drawn while others remain", func() {
			So(pickNames(res.Picks), ShouldNotContain, "A")
			So(res.Picks, ShouldHaveLength, 2)
		})
	})

	Convey("Given every item at the repeat cap", t, func() {
		var seed []model.DrawRecord
		for _, name := range []string{"A", "B"} {
			for i := 1; i <= 3; i++ {
				seed = append(seed, model.DrawRecord{ItemName: name, DrawDate: model.AddDays(today(), -i)})
			}
		}
		store := history.NewMemoryStore(seed...)
		svc, err := New(smallCatalog(t, "A", "B"), store, WithClock(clock), WithQuota(200, 40))
		So(err, ShouldBeNil)

		res, err := svc.Run(context.Background())
		So(err, ShouldBeNil)

		Convey("Then the cap is relaxed but same-day uniqueness holds", func() {
			So(res.Picks, ShouldHaveLength, 2)
			So(uniqueNames(res.Picks), ShouldBeTrue)
		})
	})
}

func TestRunPrunes(t *testing.T) {
	Convey("Given rows at the retention boundary", t, func() {
		store := history.NewMemoryStore(
			model.DrawRecord{ItemName: "old", DrawDate: model.AddDays(today(), -8)},
			model.DrawRecord{ItemName: "kept", DrawDate: model.AddDays(today(), -7)},
		)
		svc, err := New(smallCatalog(t, "A"), store, WithClock(clock), WithQuota(40, 40))
		So(err, ShouldBeNil)

		res, err := svc.Run(context.Background())
		So(err, ShouldBeNil)

		Convey("Then the first run of the day drops only rows past retention", func() {
			So(store.Len(), ShouldEqual, 2)
			So(res.HistorySince, ShouldNotBeNil)
			So(*res.HistorySince, ShouldEqual, model.AddDays(today(), -7))
		})
	})
}

func TestRunReplayLegacyRows(t *testing.T) {
	Convey("Given today's rows written without region or run id", t, func() {
		store := history.NewMemoryStore(
			model.DrawRecord{ItemName: "无相之风", DrawDate: today()},
			model.DrawRecord{ItemName: "Unknown Boss", DrawDate: today()},
		)
		svc, err := New(catalog.Default(), store, WithClock(clock))
		So(err, ShouldBeNil)

		res, err := svc.Run(context.Background())
		So(err, ShouldBeNil)

		Convey("Then they are replayed with the rows' own date and known regions", func() {
			So(res.Replayed, ShouldBeTrue)
			So(res.Date, ShouldEqual, today())
			So(res.RunID, ShouldBeEmpty)
			So(res.Picks, ShouldResemble, []model.Pick{
				{Region: "蒙德", Name: "无相之风"},
				{Region: "", Name: "Unknown Boss"},
			})
			So(store.Len(), ShouldEqual, 2)
		})
	})
}

func TestRunDegradedStore(t *testing.T) {
	Convey("Given a store whose reads fail", t, func() {
		store := &failingStore{MemoryStore: history.NewMemoryStore()}
		svc, err := New(catalog.Default(), store, WithClock(clock))
		So(err, ShouldBeNil)

		res, err := svc.Run(context.Background())

		Convey("Then the run treats history as empty and still draws", func() {
			So(err, ShouldBeNil)
			So(res.Replayed, ShouldBeFalse)
			So(res.Picks, ShouldHaveLength, 5)
			So(res.HistorySince, ShouldBeNil)
			So(store.Len(), ShouldEqual, 5)
		})
	})

	Convey("Given a store whose writes also fail", t, func() {
		store := &failingStore{MemoryStore: history.NewMemoryStore(), failWrites: true}
		svc, err := New(smallCatalog(t, "A", "B", "C"), store, WithClock(clock), WithQuota(120, 40))
		So(err, ShouldBeNil)

		res, err := svc.Run(context.Background())

		Convey("Then picks are still returned and still distinct", func() {
			So(err, ShouldBeNil)
			So(res.Picks, ShouldHaveLength, 3)
			So(uniqueNames(res.Picks), ShouldBeTrue)
			So(store.Len(), ShouldEqual, 0)
		})
	})
}

func TestRunLocker(t *testing.T) {
	Convey("Given a locker", t, func() {
		ctx := context.Background()

		Convey("When the lock is available", func() {
			l := &fakeLocker{}
			svc, err := New(catalog.Default(), history.NewMemoryStore(), WithClock(clock), WithLocker(l))
			So(err, ShouldBeNil)

			_, err = svc.Run(ctx)
			So(err, ShouldBeNil)
			So(l.locked, ShouldEqual, 1)
			So(l.released, ShouldEqual, 1)
		})

		Convey("When the lock cannot be taken", func() {
			busy := errors.New("busy")
			store := history.NewMemoryStore()
			svc, err := New(catalog.Default(), store, WithClock(clock), WithLocker(&fakeLocker{err: busy}))
			So(err, ShouldBeNil)

			_, err = svc.Run(ctx)
			So(errors.Is(err, ErrLock), ShouldBeTrue)
			So(errors.Is(err, busy), ShouldBeTrue)
			So(store.Len(), ShouldEqual, 0)
			So(svc.State(), ShouldEqual, StateNotStartedToday)
		})
	})
}

func TestStateString(t *testing.T) {
	Convey("States have stable names", t, func() {
		So(StateNotStartedToday.String(), ShouldEqual, "NOT_STARTED_TODAY")
		So(StateInProgress.String(), ShouldEqual, "IN_PROGRESS")
		So(StateCompleteToday.String(), ShouldEqual, "COMPLETE_TODAY")
		So(State(42).String(), ShouldEqual, "UNKNOWN")
	})
}

func TestRunHonoursFirstReleaseHistory(t *testing.T) {
	Convey("Given a first-release sqlite file where 急冻树 was drawn three times this week", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "genshin_boss_history.db")

		db, err := sql.Open("sqlite", path)
		So(err, ShouldBeNil)
		_, err = db.Exec(`CREATE TABLE boss_history (boss_name TEXT NOT NULL, draw_date DATE NOT NULL)`)
		So(err, ShouldBeNil)
		for i := 1; i <= 3; i++ {
			_, err = db.Exec(`INSERT INTO boss_history (boss_name, draw_date) VALUES (?, ?)`,
				"急冻树", model.FormatDate(model.AddDays(today(), -i)))
			So(err, ShouldBeNil)
		}
		So(db.Close(), ShouldBeNil)

		store, err := history.NewSQLiteStore(path)
		So(err, ShouldBeNil)
		So(store.Initialize(ctx), ShouldBeNil)

		cat := catalog.Default()
		_, known := cat.Lookup("急冻树")
		So(known, ShouldBeTrue)

		counts, err := store.RecentCounts(ctx, DefaultWindowDays, today())
		So(err, ShouldBeNil)
		So(counts["急冻树"], ShouldEqual, 3)

		Convey("When every other boss can still be drawn", func() {
			// One pick per uncapped boss: the capped one is never needed.
			svc, err := New(cat, store, WithClock(clock), WithSeed(3), WithQuota((cat.Len()-1)*40, 40))
			So(err, ShouldBeNil)

			res, err := svc.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Then the capped boss is held back", func() {
				So(res.Picks, ShouldHaveLength, cat.Len()-1)
				So(uniqueNames(res.Picks), ShouldBeTrue)
				So(pickNames(res.Picks), ShouldNotContain, "急冻树")
			})
		})

		Convey("When a legacy row for today is replayed", func() {
			db, err := sql.Open("sqlite", path)
			So(err, ShouldBeNil)
			_, err = db.Exec(`INSERT INTO boss_history (boss_name, draw_date) VALUES (?, ?)`,
				"急冻树", model.FormatDate(today()))
			So(err, ShouldBeNil)
			So(db.Close(), ShouldBeNil)

			svc, err := New(cat, store, WithClock(clock))
			So(err, ShouldBeNil)
			res, err := svc.Run(ctx)
			So(err, ShouldBeNil)

			Convey("Then its region comes from the catalog", func() {
				So(res.Replayed, ShouldBeTrue)
				So(res.Picks, ShouldResemble, []model.Pick{{Region: "蒙德", Name: "急冻树"}})
			})
		})
	})
}
