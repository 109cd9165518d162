package scoring

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/pkg/logger"
)

// Default scoring configuration.
const (
	DefaultMinItems          = 3
	DefaultMinCompletionRate = 0.8
)

// Method selects how construct scores are expressed.
type Method string

const (
	MethodRaw          Method = "raw"
	MethodStandardized Method = "standardized"
	MethodPercentile   Method = "percentile"
)

// ParseMethod maps a configuration string onto a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodRaw, MethodStandardized, MethodPercentile:
		return m, nil
	case "":
		return MethodStandardized, nil
	default:
		return "", errors.Wrapf(ErrUnknownMethod, "%q", s)
	}
}

// Option applies a configuration option to the ConstructScorer.
type Option func(*ConstructScorer)

// WithMethod sets the scoring method. Unknown methods are ignored.
func WithMethod(m Method) Option {
	return func(s *ConstructScorer) {
		if _, err := ParseMethod(string(m)); err == nil && m != "" {
			s.method = m
		}
	}
}

// WithRaschScoring turns logit-based T-scores on or off.
func WithRaschScoring(enabled bool) Option {
	return func(s *ConstructScorer) { s.raschScoring = enabled }
}

// WithMinItems sets the minimum answered items per construct.
func WithMinItems(n int) Option {
	return func(s *ConstructScorer) {
		if n >= 1 {
			s.minItems = n
		}
	}
}

// WithMinCompletionRate sets the completion rate below which a person is flagged.
func WithMinCompletionRate(rate float64) Option {
	return func(s *ConstructScorer) {
		if rate >= 0 && rate <= 1 {
			s.minCompletionRate = rate
		}
	}
}

// WithNorms supplies normative statistics per construct.
func WithNorms(n model.Norms) Option {
	return func(s *ConstructScorer) { s.norms = n }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *ConstructScorer) {
		if l != nil {
			s.log = l
		}
	}
}
