package history

import "errors"

// Sentinel kinds for history store errors.
var (
	ErrInitialize    = errors.New("history store initialization failed")
	ErrUnknownDriver = errors.New("unknown history driver")
	ErrInvalidRecord = errors.New("invalid draw record")
)
