package matrix

import "github.com/cockroachdb/errors"

// Sentinel errors.
var (
	ErrEmptyInput = errors.New("response matrix has no persons or no items")
	ErrShape      = errors.New("matrix dimensions do not match")
)
