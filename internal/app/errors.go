package app

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrLock       = errors.New("acquire run lock")
	ErrNilCatalog = errors.New("catalog is required")
	ErrNilStore   = errors.New("history store is required")
)
