package synth

import "github.com/cockroachdb/errors"

// Error constants.
var (
	ErrInvalidConfig = errors.New("invalid synth config")
	ErrSubmit        = errors.New("submit failed")
)
