// Package rasch calibrates person abilities and item difficulties on a shared logit scale.
package rasch

import (
	"context"
	"math"
	"math/rand"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/matrix"
	"github.com/okian/victoria/internal/domain/model"
)

// Strategy selects the estimation algorithm.
type Strategy string

const (
	// StrategyNewton is coordinate-wise Newton-Raphson joint estimation.
	StrategyNewton Strategy = "newton"
	// StrategyLBFGS minimizes the joint negative log-likelihood with L-BFGS.
	StrategyLBFGS Strategy = "lbfgs"
)

// ParseStrategy maps a configuration string onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyNewton:
		return StrategyNewton, nil
	case StrategyLBFGS:
		return StrategyLBFGS, nil
	default:
		return "", errors.Wrapf(ErrUnknownStrategy, "%q", s)
	}
}

// Estimator calibrates a response matrix.
type Estimator interface {
	Estimate(ctx context.Context, m *matrix.ResponseMatrix) (*Result, error)
	Strategy() Strategy
}

// Result is the outcome of one estimation. MaxChange is the last parameter step for
// Newton-Raphson and the final gradient max-norm for L-BFGS.
type Result struct {
	Parameters model.RaschParameters
	Strategy   Strategy
	Iterations int
	Converged  bool
	MaxChange  float64
}

// New returns the estimator for a strategy.
func New(strategy Strategy, opts ...Option) (Estimator, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	switch strategy {
	case "", StrategyNewton:
		return &NewtonRaphson{settings: s}, nil
	case StrategyLBFGS:
		return &LikelihoodOptimizer{settings: s}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", strategy)
	}
}

// expected is the logistic expected score for ability theta on an item of difficulty beta.
func expected(theta, beta float64) float64 {
	return 1 / (1 + math.Exp(-(theta - beta)))
}

// proportions maps every cell onto [0, 1] using the category scale.
func proportions(m *matrix.ResponseMatrix, lo, hi float64) [][]float64 {
	span := hi - lo
	out := m.Dense()
	for i := range out {
		for j, v := range out[i] {
			p := (v - lo) / span
			out[i][j] = math.Min(1, math.Max(0, p))
		}
	}
	return out
}

// initialDraw samples theta then beta from N(0, sigma^2).
func initialDraw(seed int64, sigma float64, persons, items int) ([]float64, []float64) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible draws, not security
	theta := make([]float64, persons)
	beta := make([]float64, items)
	for i := range theta {
		theta[i] = rng.NormFloat64() * sigma
	}
	for j := range beta {
		beta[j] = rng.NormFloat64() * sigma
	}
	return theta, beta
}

// center shifts both parameter sets by mean(beta).
func center(theta, beta []float64) {
	var sum float64
	for _, b := range beta {
		sum += b
	}
	offset := sum / float64(len(beta))
	for i := range theta {
		theta[i] -= offset
	}
	for j := range beta {
		beta[j] -= offset
	}
}

func toParameters(m *matrix.ResponseMatrix, theta, beta []float64) model.RaschParameters {
	p := model.RaschParameters{
		PersonAbilities:  make(map[string]float64, len(theta)),
		ItemDifficulties: make(map[string]float64, len(beta)),
	}
	for i, id := range m.Persons() {
		p.PersonAbilities[id] = theta[i]
	}
	for j, id := range m.Items() {
		p.ItemDifficulties[id] = beta[j]
	}
	return p
}

func validate(m *matrix.ResponseMatrix) error {
	if m.Empty() {
		return ErrEstimationInput
	}
	return nil
}
