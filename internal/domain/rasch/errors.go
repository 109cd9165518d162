package rasch

import "github.com/cockroachdb/errors"

// Sentinel errors.
var (
	ErrEstimationInput  = errors.New("rasch estimation needs a non-empty response matrix")
	ErrUnknownStrategy  = errors.New("unknown estimator strategy")
	ErrOptimizerFailure = errors.New("likelihood optimizer failed")
)
