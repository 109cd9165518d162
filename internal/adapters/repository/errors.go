package repository

import "github.com/cockroachdb/errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("run not found")
	ErrDuplicate    = errors.New("run already stored")
	ErrInvalidLimit = errors.New("invalid list limit")
	ErrClosed       = errors.New("store closed")
)
