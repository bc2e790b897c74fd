package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver

	"github.com/okian/dailyboss/internal/domain/model"
)

const (
	defaultSQLitePath = "genshin_boss_history.db"
	sqliteBusyTimeout = "_pragma=busy_timeout(5000)"
)

// sqlOpen is swapped in tests to inject connection failures.
var sqlOpen = sql.Open //nolint:gochecknoglobals // test seam

// SQLStore is a Store over database/sql. A connection is opened at the start
// of each operation and closed before it returns; no handle outlives a call.
type SQLStore struct {
	dialect dialect
	dsn     string
}

// NewSQLiteStore returns a store on the sqlite file at path.
func NewSQLiteStore(path string) (*SQLStore, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	return &SQLStore{dialect: sqliteDialect, dsn: path + "?" + sqliteBusyTimeout}, nil
}

// NewPostgresStore returns a store on the postgres database at dsn.
func NewPostgresStore(dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres requires a dsn", ErrUnknownDriver)
	}
	return &SQLStore{dialect: postgresDialect, dsn: dsn}, nil
}

// Driver returns the backend name.
func (s *SQLStore) Driver() string { return s.dialect.name }

func (s *SQLStore) withDB(ctx context.Context, fn func(*sql.DB) error) (retErr error) {
	db, err := sqlOpen(s.dialect.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.dialect.name, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && retErr == nil {
			retErr = fmt.Errorf("close %s: %w", s.dialect.name, cerr)
		}
	}()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", s.dialect.name, err)
	}
	return fn(db)
}

// Initialize implements Store.
func (s *SQLStore) Initialize(ctx context.Context) error {
	err := s.withDB(ctx, func(db *sql.DB) error {
		if _, err := db.ExecContext(ctx, createTable); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
		if err := s.migrate(ctx, db); err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, createIndex); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitialize, err)
	}
	return nil
}

// migrate adds columns that tables from the first release lack.
func (s *SQLStore) migrate(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, s.dialect.columnsSQL)
	if err != nil {
		return fmt.Errorf("list columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	have := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan column: %w", err)
		}
		have[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list columns: %w", err)
	}
	_ = rows.Close()

	for _, col := range addedColumns {
		if have[col.name] {
			continue
		}
		if _, err := db.ExecContext(ctx, addColumnSQL(col.name, col.ddl)); err != nil {
			return fmt.Errorf("add column %s: %w", col.name, err)
		}
	}
	return nil
}

// RecordDraw implements Store.
func (s *SQLStore) RecordDraw(ctx context.Context, rec model.DrawRecord) error {
	if rec.ItemName == "" {
		return fmt.Errorf("%w: empty item name", ErrInvalidRecord)
	}
	return s.withDB(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, s.dialect.rebind(insertDraw),
			rec.ItemName,
			model.FormatDate(rec.DrawDate),
			nullString(rec.Region),
			nullString(rec.RunID),
			sql.NullInt64{Int64: int64(rec.Seq), Valid: rec.Seq > 0},
		)
		if err != nil {
			return fmt.Errorf("insert draw: %w", err)
		}
		return nil
	})
}

// RecentCounts implements Store.
func (s *SQLStore) RecentCounts(ctx context.Context, windowDays int, asOf time.Time) (map[string]int, error) {
	counts := make(map[string]int)
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, s.dialect.rebind(selectRecentCounts), model.FormatDate(windowStart(asOf, windowDays)))
		if err != nil {
			return fmt.Errorf("select recent counts: %w", err)
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var (
				name string
				n    int
			)
			if err := rows.Scan(&name, &n); err != nil {
				return fmt.Errorf("scan recent count: %w", err)
			}
			counts[name] = n
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// TodaysDraws implements Store.
func (s *SQLStore) TodaysDraws(ctx context.Context, asOf time.Time) ([]model.DrawRecord, error) {
	var out []model.DrawRecord
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, s.dialect.rebind(selectTodaysDraws), model.FormatDate(asOf))
		if err != nil {
			return fmt.Errorf("select todays draws: %w", err)
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var (
				rec    model.DrawRecord
				day    string
				region sql.NullString
				runID  sql.NullString
				seq    sql.NullInt64
			)
			if err := rows.Scan(&rec.ItemName, &day, &region, &runID, &seq); err != nil {
				return fmt.Errorf("scan draw: %w", err)
			}
			if rec.DrawDate, err = model.ParseDate(day); err != nil {
				return err
			}
			rec.Region = region.String
			rec.RunID = runID.String
			rec.Seq = int(seq.Int64)
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EarliestDate implements Store.
func (s *SQLStore) EarliestDate(ctx context.Context) (time.Time, bool, error) {
	var earliest sql.NullString
	err := s.withDB(ctx, func(db *sql.DB) error {
		if err := db.QueryRowContext(ctx, selectEarliestDate).Scan(&earliest); err != nil {
			return fmt.Errorf("select earliest date: %w", err)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, false, err
	}
	if !earliest.Valid || earliest.String == "" {
		return time.Time{}, false, nil
	}
	day, err := model.ParseDate(earliest.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return day, true, nil
}

// Prune implements Store.
func (s *SQLStore) Prune(ctx context.Context, retainDays int, asOf time.Time) (int64, error) {
	var deleted int64
	err := s.withDB(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, s.dialect.rebind(deleteBefore), model.FormatDate(windowStart(asOf, retainDays)))
		if err != nil {
			return fmt.Errorf("delete stale draws: %w", err)
		}
		deleted, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
