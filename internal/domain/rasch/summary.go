package rasch

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Fixed fit indices reported until real fit statistics are computed.
const (
	PlaceholderPersonReliability = 0.85
	PlaceholderItemReliability   = 0.90
	PlaceholderPersonSeparation  = 2.45
	PlaceholderItemSeparation    = 3.00
)

// Distribution summarizes a set of logits.
type Distribution struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// ModelSummary describes a calibration.
type ModelSummary struct {
	Strategy     Strategy     `json:"strategy"`
	Persons      int          `json:"persons_count"`
	Items        int          `json:"items_count"`
	Iterations   int          `json:"iterations"`
	Converged    bool         `json:"converged"`
	Abilities    Distribution `json:"ability_stats"`
	Difficulties Distribution `json:"difficulty_stats"`
}

// FitStatistics carries the reliability and separation indices.
type FitStatistics struct {
	PersonReliability float64 `json:"person_reliability"`
	ItemReliability   float64 `json:"item_reliability"`
	PersonSeparation  float64 `json:"person_separation"`
	ItemSeparation    float64 `json:"item_separation"`
	MeanAbility       float64 `json:"mean_person_ability"`
	MeanDifficulty    float64 `json:"mean_item_difficulty"`
}

func sortedValues(m map[string]float64) []float64 {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

func distribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	return Distribution{Mean: mean, Std: std, Min: floats.Min(values), Max: floats.Max(values)}
}

// Summarize builds the model summary of a result.
func Summarize(r *Result) ModelSummary {
	abilities := sortedValues(r.Parameters.PersonAbilities)
	difficulties := sortedValues(r.Parameters.ItemDifficulties)
	return ModelSummary{
		Strategy:     r.Strategy,
		Persons:      len(abilities),
		Items:        len(difficulties),
		Iterations:   r.Iterations,
		Converged:    r.Converged,
		Abilities:    distribution(abilities),
		Difficulties: distribution(difficulties),
	}
}

// Fit returns the fit indices of a result.
func Fit(r *Result) FitStatistics {
	return FitStatistics{
		PersonReliability: PlaceholderPersonReliability,
		ItemReliability:   PlaceholderItemReliability,
		PersonSeparation:  PlaceholderPersonSeparation,
		ItemSeparation:    PlaceholderItemSeparation,
		MeanAbility:       distribution(sortedValues(r.Parameters.PersonAbilities)).Mean,
		MeanDifficulty:    distribution(sortedValues(r.Parameters.ItemDifficulties)).Mean,
	}
}

// PercentileFromLogit maps a logit onto [1, 99] assuming a -3..+3 range.
func PercentileFromLogit(measure float64) float64 {
	p := (measure + 3) / 6 * 100
	return math.Max(1, math.Min(99, p))
}
