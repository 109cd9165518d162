package rasch

import (
	"context"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/matrix"
	"github.com/okian/victoria/pkg/logger"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LikelihoodOptimizer minimizes the joint negative log-likelihood of all
// parameters at once with L-BFGS. A small ridge keeps extreme persons finite.
type LikelihoodOptimizer struct {
	settings settings
}

// Strategy implements Estimator.
func (e *LikelihoodOptimizer) Strategy() Strategy { return StrategyLBFGS }

// softplus is log(1+exp(z)) without overflow.
func softplus(z float64) float64 {
	return math.Max(z, 0) + math.Log1p(math.Exp(-math.Abs(z)))
}

// Estimate implements Estimator.
func (e *LikelihoodOptimizer) Estimate(ctx context.Context, m *matrix.ResponseMatrix) (*Result, error) {
	if err := validate(m); err != nil {
		return nil, err
	}
	s := e.settings
	obs := proportions(m, s.scaleMin, s.scaleMax)
	persons, items := m.Rows(), m.Cols()
	theta0, beta0 := initialDraw(s.seed, s.initScale, persons, items)
	x0 := append(theta0, beta0...)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			theta, beta := x[:persons], x[persons:]
			nll := 0.0
			for i := 0; i < persons; i++ {
				for j := 0; j < items; j++ {
					z := theta[i] - beta[j]
					nll += softplus(z) - obs[i][j]*z
				}
			}
			for _, v := range x {
				nll += 0.5 * ridgePenalty * v * v
			}
			return nll
		},
		Grad: func(grad, x []float64) {
			theta, beta := x[:persons], x[persons:]
			for k, v := range x {
				grad[k] = ridgePenalty * v
			}
			for i := 0; i < persons; i++ {
				for j := 0; j < items; j++ {
					r := expected(theta[i], beta[j]) - obs[i][j]
					grad[i] += r
					grad[persons+j] -= r
				}
			}
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   s.maxIterations,
		GradientThreshold: s.tolerance,
	}
	out, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if out == nil {
		return nil, errors.Wrap(errors.CombineErrors(ErrOptimizerFailure, err), "lbfgs")
	}
	if err != nil {
		s.log.Warn(ctx, "likelihood optimizer stopped early", logger.Error(err), logger.String("status", out.Status.String()))
	}

	theta := append([]float64(nil), out.X[:persons]...)
	beta := append([]float64(nil), out.X[persons:]...)
	center(theta, beta)

	res := &Result{
		Parameters: toParameters(m, theta, beta),
		Strategy:   StrategyLBFGS,
		Iterations: out.Stats.MajorIterations,
		Converged:  out.Status == optimize.GradientThreshold || out.Status == optimize.FunctionConvergence,
		MaxChange:  floats.Norm(out.Gradient, math.Inf(1)),
	}
	s.log.Info(ctx, "likelihood optimization finished",
		logger.Int("iterations", res.Iterations),
		logger.Bool("converged", res.Converged),
		logger.String("status", out.Status.String()),
		logger.Float64("nll", out.F),
	)
	return res, nil
}
