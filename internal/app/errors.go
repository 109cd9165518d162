package service

import "github.com/cockroachdb/errors"

// Service errors.
var (
	ErrNotStarted = errors.New("service not started")
	ErrStopped    = errors.New("service stopped")
)
