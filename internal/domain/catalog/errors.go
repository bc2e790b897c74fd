package catalog

import "errors"

// Sentinel error kinds for catalog construction.
var (
	ErrEmptyCatalog   = errors.New("catalog has no items")
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrLoadCatalog    = errors.New("load catalog failed")
)
