package rasch_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/matrix"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/rasch"
	. "github.com/smartystreets/goconvey/convey"
)

func buildMatrix(persons, items int, category func(p, i int) int) *matrix.ResponseMatrix {
	var responses []model.Response
	for p := 0; p < persons; p++ {
		for i := 0; i < items; i++ {
			c := category(p, i)
			if c == 0 {
				continue
			}
			responses = append(responses, model.Response{
				PersonID: fmt.Sprintf("p%02d", p),
				ItemID:   fmt.Sprintf("i%02d", i),
				Category: c,
			})
		}
	}
	m, _, err := matrix.NewBuilder().Build(context.Background(), responses)
	if err != nil {
		panic(err)
	}
	return m
}

func patterned(p, i int) int { return 1 + (p*7+i*3+p*i)%5 }

func meanOf(values map[string]float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func strategies() []rasch.Strategy {
	return []rasch.Strategy{rasch.StrategyNewton, rasch.StrategyLBFGS}
}

func TestEstimateUniformResponses(t *testing.T) {
	ctx := context.Background()
	m := buildMatrix(10, 20, func(int, int) int { return 3 })

	for _, strategy := range strategies() {
		Convey(fmt.Sprintf("Given uniform mid-scale responses and the %s estimator", strategy), t, func() {
			est, err := rasch.New(strategy)
			So(err, ShouldBeNil)
			So(est.Strategy(), ShouldEqual, strategy)

			res, err := est.Estimate(ctx, m)
			So(err, ShouldBeNil)

			Convey("Then every parameter converges to zero", func() {
				So(res.Converged, ShouldBeTrue)
				So(len(res.Parameters.PersonAbilities), ShouldEqual, 10)
				So(len(res.Parameters.ItemDifficulties), ShouldEqual, 20)
				for _, v := range res.Parameters.PersonAbilities {
					So(math.Abs(v), ShouldBeLessThan, 1e-3)
				}
				for _, v := range res.Parameters.ItemDifficulties {
					So(math.Abs(v), ShouldBeLessThan, 1e-3)
				}
			})
		})
	}
}

func TestEstimateCentering(t *testing.T) {
	ctx := context.Background()
	m := buildMatrix(15, 12, patterned)

	for _, strategy := range strategies() {
		Convey(fmt.Sprintf("Given varied responses and the %s estimator", strategy), t, func() {
			est, err := rasch.New(strategy, rasch.WithSeed(7), rasch.WithMaxIterations(200))
			So(err, ShouldBeNil)
			res, err := est.Estimate(ctx, m)
			So(err, ShouldBeNil)

			Convey("Then mean item difficulty is zero", func() {
				So(math.Abs(meanOf(res.Parameters.ItemDifficulties)), ShouldBeLessThan, 1e-9)
			})

			Convey("Then every parameter is finite", func() {
				for _, v := range res.Parameters.PersonAbilities {
					So(math.IsNaN(v) || math.IsInf(v, 0), ShouldBeFalse)
				}
				for _, v := range res.Parameters.ItemDifficulties {
					So(math.IsNaN(v) || math.IsInf(v, 0), ShouldBeFalse)
				}
			})
		})
	}
}

func TestEstimateOrdering(t *testing.T) {
	Convey("Given a strong and a weak respondent", t, func() {
		m := buildMatrix(4, 6, func(p, i int) int {
			switch p {
			case 0:
				return 4
			case 1:
				return 2
			default:
				return 1 + (i % 5)
			}
		})
		res, err := rasch.NewNewtonRaphson().Estimate(context.Background(), m)
		So(err, ShouldBeNil)

		Convey("Then the stronger respondent has the higher ability", func() {
			So(res.Parameters.PersonAbilities["p00"], ShouldBeGreaterThan, res.Parameters.PersonAbilities["p01"])
		})

		Convey("Then harder items get higher difficulty", func() {
			So(res.Parameters.ItemDifficulties["i00"], ShouldBeGreaterThan, res.Parameters.ItemDifficulties["i04"])
		})
	})
}

func TestEstimateExtremeRespondent(t *testing.T) {
	Convey("Given a respondent who always picks the top category", t, func() {
		m := buildMatrix(5, 8, func(p, i int) int {
			if p == 0 {
				return 5
			}
			return patterned(p, i)
		})
		res, err := rasch.NewNewtonRaphson().Estimate(context.Background(), m)
		So(err, ShouldBeNil)

		Convey("Then the ability stays finite and the mean difficulty is still zero", func() {
			v := res.Parameters.PersonAbilities["p00"]
			So(math.IsNaN(v) || math.IsInf(v, 0), ShouldBeFalse)
			So(math.Abs(meanOf(res.Parameters.ItemDifficulties)), ShouldBeLessThan, 1e-9)
		})
	})
}

func TestEstimateIsReproducible(t *testing.T) {
	ctx := context.Background()
	m := buildMatrix(12, 9, patterned)

	for _, strategy := range strategies() {
		Convey(fmt.Sprintf("Given two %s runs with the same seed", strategy), t, func() {
			a, _ := rasch.New(strategy, rasch.WithSeed(3))
			b, _ := rasch.New(strategy, rasch.WithSeed(3))
			ra, err := a.Estimate(ctx, m)
			So(err, ShouldBeNil)
			rb, err := b.Estimate(ctx, m)
			So(err, ShouldBeNil)

			Convey("Then the parameters are identical", func() {
				So(ra.Parameters, ShouldResemble, rb.Parameters)
				So(ra.Iterations, ShouldEqual, rb.Iterations)
			})
		})
	}
}

func TestEstimateEmptyInput(t *testing.T) {
	Convey("Given no matrix", t, func() {
		for _, strategy := range strategies() {
			est, err := rasch.New(strategy)
			So(err, ShouldBeNil)
			_, err = est.Estimate(context.Background(), nil)
			So(errors.Is(err, rasch.ErrEstimationInput), ShouldBeTrue)
		}
	})
}

func TestStrategies(t *testing.T) {
	Convey("Given strategy names", t, func() {
		s, err := rasch.ParseStrategy("LBFGS")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, rasch.StrategyLBFGS)

		s, err = rasch.ParseStrategy("")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, rasch.StrategyNewton)

		_, err = rasch.ParseStrategy("raschpy")
		So(errors.Is(err, rasch.ErrUnknownStrategy), ShouldBeTrue)

		_, err = rasch.New("bogus")
		So(errors.Is(err, rasch.ErrUnknownStrategy), ShouldBeTrue)
	})
}

func TestMeasures(t *testing.T) {
	Convey("Given calibrated parameters on a sparse matrix", t, func() {
		m, _, err := matrix.NewBuilder().Build(context.Background(), []model.Response{
			{PersonID: "a", ItemID: "x", Category: 5},
			{PersonID: "a", ItemID: "y", Category: 1},
			{PersonID: "b", ItemID: "y", Category: 3},
		})
		So(err, ShouldBeNil)
		params := model.RaschParameters{
			PersonAbilities:  map[string]float64{"a": 0.5, "b": -0.25},
			ItemDifficulties: map[string]float64{"x": 0.123, "y": -0.123},
		}

		Convey("When category shifts are applied", func() {
			ms := rasch.Measures(m, params, true)

			Convey("Then only observed cells produce measures with sequences", func() {
				So(len(ms), ShouldEqual, 3)
				So(ms[0].PersonID, ShouldEqual, "a")
				So(ms[0].Value, ShouldEqual, 1.38)
				So(ms[1].Value, ShouldEqual, -0.88)
				So(ms[1].E1, ShouldEqual, 1)
				So(ms[1].E2, ShouldEqual, 2)
				So(ms[2].E1, ShouldEqual, 2)
				So(ms[2].E2, ShouldEqual, 1)
				So(ms[2].Value, ShouldEqual, -0.13)
			})

			Convey("Then the measure matrix fills gaps with the column mean", func() {
				mm, err := rasch.MeasureMatrix(m, ms)
				So(err, ShouldBeNil)
				So(mm.At(0, 0), ShouldEqual, 1.38)
				So(mm.At(1, 0), ShouldEqual, 1.38)
				So(mm.Observed(1, 0), ShouldBeFalse)
			})
		})

		Convey("When shifts are disabled", func() {
			ms := rasch.Measures(m, params, false)
			So(ms[0].Value, ShouldEqual, 0.38)
		})
	})
}

func TestSummaries(t *testing.T) {
	Convey("Given an estimation result", t, func() {
		res := &rasch.Result{
			Strategy:   rasch.StrategyNewton,
			Iterations: 4,
			Converged:  true,
			Parameters: model.RaschParameters{
				PersonAbilities:  map[string]float64{"a": 1, "b": -1},
				ItemDifficulties: map[string]float64{"x": 0.5, "y": -0.5},
			},
		}

		Convey("Then the summary describes both distributions", func() {
			s := rasch.Summarize(res)
			So(s.Persons, ShouldEqual, 2)
			So(s.Items, ShouldEqual, 2)
			So(s.Abilities.Std, ShouldAlmostEqual, 1.0)
			So(s.Difficulties.Max, ShouldEqual, 0.5)
		})

		Convey("Then the fit statistics carry the placeholder indices", func() {
			f := rasch.Fit(res)
			So(f.PersonReliability, ShouldEqual, rasch.PlaceholderPersonReliability)
			So(f.MeanDifficulty, ShouldEqual, 0)
		})
	})

	Convey("Logit percentiles are clamped", t, func() {
		So(rasch.PercentileFromLogit(0), ShouldEqual, 50)
		So(rasch.PercentileFromLogit(10), ShouldEqual, 99)
		So(rasch.PercentileFromLogit(-10), ShouldEqual, 1)
	})
}
