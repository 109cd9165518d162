package clustering

import "github.com/cockroachdb/errors"

// Sentinel errors.
var (
	ErrModelNotFitted  = errors.New("clusterer has not been fitted, call ClusterPersons first")
	ErrFeatureMismatch = errors.New("feature vector is wider than the fitted model")
)
