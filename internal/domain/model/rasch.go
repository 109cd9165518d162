package model

import "sort"

// Placeholder fit values carried for downstream report templates.
const (
	PlaceholderSE     = 0.3
	PlaceholderInfit  = 1.0
	PlaceholderOutfit = 1.0
)

// RaschParameters holds calibrated logits. Item difficulties have mean zero.
type RaschParameters struct {
	PersonAbilities  map[string]float64 `json:"person_abilities"`
	ItemDifficulties map[string]float64 `json:"item_difficulties"`
}

// ParameterEstimate is one calibrated parameter as handed to the report layer.
type ParameterEstimate struct {
	ID      string  `json:"id"`
	Measure float64 `json:"measure"`
	SE      float64 `json:"se"`
	Infit   float64 `json:"infit"`
	Outfit  float64 `json:"outfit"`
}

// Persons returns abilities as estimates sorted by id.
func (p RaschParameters) Persons() []ParameterEstimate { return estimates(p.PersonAbilities) }

// Items returns difficulties as estimates sorted by id.
func (p RaschParameters) Items() []ParameterEstimate { return estimates(p.ItemDifficulties) }

func estimates(values map[string]float64) []ParameterEstimate {
	out := make([]ParameterEstimate, 0, len(values))
	for id, v := range values {
		out = append(out, ParameterEstimate{ID: id, Measure: v, SE: PlaceholderSE, Infit: PlaceholderInfit, Outfit: PlaceholderOutfit})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Measure is a person-by-item logit measure derived from calibrated parameters.
// E1 is the person sequence and E2 the item sequence within that person, both 1-based.
type Measure struct {
	PersonID string  `json:"person_id"`
	ItemID   string  `json:"item_id"`
	Category int     `json:"category"`
	Value    float64 `json:"measure"`
	E1       int     `json:"e1"`
	E2       int     `json:"e2"`
}
