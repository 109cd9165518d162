package scoring

import (
	"math"
	"sort"

	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/stats"
)

// Score bounds.
const (
	tScoreMean = 50
	tScoreSD   = 10
	tScoreMin  = 10
	tScoreMax  = 90

	percentileMin = 1
	percentileMax = 99
	// linear z to percentile approximation used without normative values
	percentilePerZ = 20
)

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// TScore maps a logit or z value onto the clamped T scale.
func TScore(z float64) float64 {
	return stats.Clamp(finiteOr(tScoreMean+tScoreSD*z, tScoreMean), tScoreMin, tScoreMax)
}

// proportionLogit converts raw category codes into a logit of the proportion of
// the maximum possible sum. Zero and perfect sums are pulled in by half a point.
func proportionLogit(values []float64, norm model.ConstructNorm) float64 {
	raw := 0.0
	top := math.Inf(-1)
	for _, v := range values {
		raw += v
		top = math.Max(top, v)
	}
	maxPossible := float64(len(values)) * top
	if maxPossible <= 0 {
		return math.NaN()
	}
	switch {
	case raw <= 0:
		raw = 0.5
	case raw >= maxPossible:
		raw = maxPossible - 0.5
	}
	p := raw / maxPossible
	logit := math.Log(p / (1 - p))
	if len(norm.ItemDifficulties) > 0 {
		d := make([]float64, 0, len(norm.ItemDifficulties))
		for _, v := range norm.ItemDifficulties {
			d = append(d, v)
		}
		sort.Float64s(d)
		logit -= mean(d)
	}
	return logit
}

// zScore standardizes m against the norm, defaulting to its own mean and unit spread.
func zScore(m float64, norm model.ConstructNorm) float64 {
	nm, ns := m, 1.0
	if norm.Mean != nil {
		nm = *norm.Mean
	}
	if norm.Std != nil && *norm.Std > 0 {
		ns = *norm.Std
	}
	return (m - nm) / ns
}

// PercentileAgainst ranks v within normative values, clamped to [1, 99].
func PercentileAgainst(v float64, values []float64) float64 {
	below := 0
	for _, x := range values {
		if x <= v {
			below++
		}
	}
	return stats.Clamp(100*float64(below)/float64(len(values)), percentileMin, percentileMax)
}

// LinearPercentile approximates a percentile from a mean on the T scale.
func LinearPercentile(m float64) float64 {
	z := (m - tScoreMean) / tScoreSD
	return stats.Clamp(finiteOr(tScoreMean+z*percentilePerZ, tScoreMean), percentileMin, percentileMax)
}
