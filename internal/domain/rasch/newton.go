package rasch

import (
	"context"
	"math"

	"github.com/okian/victoria/internal/domain/matrix"
	"github.com/okian/victoria/pkg/logger"
)

// NewtonRaphson is the coordinate-wise joint maximum likelihood estimator.
// Persons are swept first against the current difficulties, then items against
// the freshly updated abilities.
type NewtonRaphson struct {
	settings settings
}

// NewNewtonRaphson builds the estimator directly.
func NewNewtonRaphson(opts ...Option) *NewtonRaphson {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &NewtonRaphson{settings: s}
}

// Strategy implements Estimator.
func (e *NewtonRaphson) Strategy() Strategy { return StrategyNewton }

// Estimate implements Estimator.
func (e *NewtonRaphson) Estimate(ctx context.Context, m *matrix.ResponseMatrix) (*Result, error) {
	if err := validate(m); err != nil {
		return nil, err
	}
	s := e.settings
	obs := proportions(m, s.scaleMin, s.scaleMax)
	persons, items := m.Rows(), m.Cols()
	theta, beta := initialDraw(s.seed, s.initScale, persons, items)

	res := &Result{Strategy: StrategyNewton}
	skipped := 0
	for iter := 1; iter <= s.maxIterations; iter++ {
		res.Iterations = iter
		maxTheta, maxBeta := 0.0, 0.0

		for i := 0; i < persons; i++ {
			first, second := 0.0, 0.0
			for j := 0; j < items; j++ {
				p := expected(theta[i], beta[j])
				first += obs[i][j] - p
				second -= p * (1 - p)
			}
			if math.Abs(second) < minCurvature {
				skipped++
				continue
			}
			step := first / second
			theta[i] -= step
			maxTheta = math.Max(maxTheta, math.Abs(step))
		}

		for j := 0; j < items; j++ {
			first, second := 0.0, 0.0
			for i := 0; i < persons; i++ {
				p := expected(theta[i], beta[j])
				first += p - obs[i][j]
				second -= p * (1 - p)
			}
			if math.Abs(second) < minCurvature {
				skipped++
				continue
			}
			step := first / second
			beta[j] -= step
			maxBeta = math.Max(maxBeta, math.Abs(step))
		}

		res.MaxChange = math.Max(maxTheta, maxBeta)
		if maxTheta < s.tolerance && maxBeta < s.tolerance {
			res.Converged = true
			break
		}
	}

	center(theta, beta)
	res.Parameters = toParameters(m, theta, beta)

	fields := []logger.Field{
		logger.Int("iterations", res.Iterations),
		logger.Bool("converged", res.Converged),
		logger.Float64("max_change", res.MaxChange),
		logger.Int("skipped_updates", skipped),
	}
	if res.Converged {
		s.log.Info(ctx, "rasch estimation converged", fields...)
	} else {
		s.log.Warn(ctx, "rasch estimation hit the iteration limit", fields...)
	}
	return res, nil
}
