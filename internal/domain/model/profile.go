package model

// ConstructScore is a person's aggregated score on one construct.
type ConstructScore struct {
	PersonID      string   `json:"person_id"`
	ConstructCode string   `json:"construct_code"`
	ConstructName string   `json:"construct_name"`
	Score         float64  `json:"score"`
	Reliability   *float64 `json:"reliability"`
	ItemCount     int      `json:"item_count"`
	Percentile    *float64 `json:"percentile,omitempty"`
}

// PersonProfile is the scorer's output for one person.
type PersonProfile struct {
	PersonID        string           `json:"person_id"`
	OverallScore    float64          `json:"overall_score"`
	ConstructScores []ConstructScore `json:"construct_scores"`
	CompletionRate  float64          `json:"completion_rate"`
}

// Features returns the construct scores in order, or the overall score when no construct qualified.
func (p PersonProfile) Features() []float64 {
	if len(p.ConstructScores) == 0 {
		return []float64{p.OverallScore}
	}
	out := make([]float64, len(p.ConstructScores))
	for i, cs := range p.ConstructScores {
		out[i] = cs.Score
	}
	return out
}
