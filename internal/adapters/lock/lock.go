// Package lock serialises concurrent invocations that share one history
// store, so two runs cannot both decide today is undrawn.
package lock

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrLocked is returned when another run holds the lock past the timeout.
var ErrLocked = errors.New("another run holds the history lock")

const retryInterval = 50 * time.Millisecond

// Lock is a held run lock. The zero value and nil are safe to Release.
type Lock struct {
	file *os.File
	path string
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// PathFor derives the lock file that guards a sqlite database file.
func PathFor(dbPath string) string {
	return dbPath + ".lock"
}

// Acquire takes the lock at path, retrying until timeout elapses or ctx is
// done. A zero timeout tries exactly once.
func Acquire(ctx context.Context, path string, timeout time.Duration) (*Lock, error) {
	deadline := time.Now().Add(timeout)
	for {
		l, err := tryAcquire(path)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, ErrLocked) || !time.Now().Before(deadline) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func readOwnerPID(path string) (int, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	raw := strings.TrimSpace(string(b))
	if !strings.HasPrefix(raw, "pid=") {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimPrefix(raw, "pid="))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, true
}

// FileLocker acquires the lock at Path for the duration of one run.
type FileLocker struct {
	Path    string
	Timeout time.Duration
}

// Lock acquires the file lock and returns a function releasing it.
func (f FileLocker) Lock(ctx context.Context) (func(), error) {
	l, err := Acquire(ctx, f.Path, f.Timeout)
	if err != nil {
		return nil, err
	}
	return func() { _ = l.Release() }, nil
}
