package scoring

import "github.com/cockroachdb/errors"

// Sentinel errors.
var (
	ErrEmptyInput    = errors.New("scoring needs a non-empty measure matrix")
	ErrUnknownMethod = errors.New("unknown scoring method")
)
