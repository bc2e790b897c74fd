package history

import (
	"fmt"
	"strconv"
	"strings"
)

const tableName = "boss_history"

const createTable = `CREATE TABLE IF NOT EXISTS boss_history (
	boss_name TEXT NOT NULL,
	draw_date DATE NOT NULL,
	region    TEXT,
	run_id    TEXT,
	seq       INTEGER
)`

const createIndex = `CREATE INDEX IF NOT EXISTS idx_boss_history_name_date
	ON boss_history (boss_name, draw_date)`

// addedColumns are the columns missing from tables created by the first
// release, which only had boss_name and draw_date.
var addedColumns = []struct { //nolint:gochecknoglobals // static schema
	name string
	ddl  string
}{
	{"region", "TEXT"},
	{"run_id", "TEXT"},
	{"seq", "INTEGER"},
}

const (
	insertDraw = `INSERT INTO boss_history (boss_name, draw_date, region, run_id, seq)
	VALUES (?, ?, ?, ?, ?)`
	selectRecentCounts = `SELECT boss_name, COUNT(*) FROM boss_history
	WHERE draw_date >= ? GROUP BY boss_name`
	selectTodaysDraws = `SELECT boss_name, draw_date, region, run_id, seq FROM boss_history
	WHERE draw_date = ? ORDER BY COALESCE(run_id, ''), COALESCE(seq, 0)`
	selectEarliestDate = `SELECT MIN(draw_date) FROM boss_history`
	deleteBefore       = `DELETE FROM boss_history WHERE draw_date < ?`
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	name       string
	driver     string
	columnsSQL string
	numbered   bool // $1, $2 placeholders instead of ?
}

var (
	sqliteDialect = dialect{ //nolint:gochecknoglobals // static dialect
		name:       DriverSQLite,
		driver:     "sqlite",
		columnsSQL: `SELECT name FROM pragma_table_info('boss_history')`,
	}
	postgresDialect = dialect{ //nolint:gochecknoglobals // static dialect
		name:       DriverPostgres,
		driver:     "pgx",
		columnsSQL: `SELECT column_name FROM information_schema.columns
	WHERE table_schema = current_schema() AND table_name = 'boss_history'`,
		numbered:   true,
	}
)

// rebind rewrites ? placeholders for dialects with numbered parameters.
// Queries in this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func addColumnSQL(name, ddl string) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", tableName, name, ddl)
}
