package history

import (
	"fmt"
	"strings"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver string // sqlite (default), postgres or memory
	Path   string // sqlite file
	DSN    string // postgres connection string
}

// Open builds the configured store wrapped with metrics. The schema is not
// touched; call Initialize before use.
func Open(opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		s, err = NewSQLiteStore(opts.Path)
	case DriverPostgres, "pgx":
		s, err = NewPostgresStore(opts.DSN)
	case DriverMemory:
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(s), nil
}
