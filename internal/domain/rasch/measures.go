package rasch

import (
	"math"

	"github.com/okian/victoria/internal/domain/matrix"
	"github.com/okian/victoria/internal/domain/model"
)

// categoryShift offsets a logit measure by the response category.
var categoryShift = map[int]float64{ //nolint:gochecknoglobals // static lookup
	1: -1.5,
	2: -0.5,
	3: 0,
	4: 0.5,
	5: 1.0,
}

// CategoryShift returns the logit offset for a category, zero outside the table.
func CategoryShift(category int) float64 { return categoryShift[category] }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Measures derives one logit measure per observed response:
// ability minus difficulty, optionally shifted by the response category, rounded to 2dp.
// Imputed cells are skipped. E1 is the 1-based person sequence, E2 the 1-based
// sequence of observed responses within that person.
func Measures(m *matrix.ResponseMatrix, p model.RaschParameters, shift bool) []model.Measure {
	if m.Empty() {
		return nil
	}
	persons, items := m.Persons(), m.Items()
	out := make([]model.Measure, 0, m.Rows()*m.Cols())
	for i, pid := range persons {
		seq := 0
		for j, iid := range items {
			if !m.Observed(i, j) {
				continue
			}
			seq++
			category := int(math.Round(m.At(i, j)))
			v := p.PersonAbilities[pid] - p.ItemDifficulties[iid]
			if shift {
				v += CategoryShift(category)
			}
			out = append(out, model.Measure{
				PersonID: pid,
				ItemID:   iid,
				Category: category,
				Value:    round2(v),
				E1:       i + 1,
				E2:       seq,
			})
		}
	}
	return out
}

// MeasureMatrix lays measures out on the shape of m. Unobserved cells hold the
// column mean of the observed measures, mirroring how the response matrix is filled.
func MeasureMatrix(m *matrix.ResponseMatrix, measures []model.Measure) (*matrix.ResponseMatrix, error) {
	values := make([][]float64, m.Rows())
	for i := range values {
		values[i] = make([]float64, m.Cols())
	}
	sums := make([]float64, m.Cols())
	counts := make([]int, m.Cols())
	for _, ms := range measures {
		i, ok := m.PersonIndex(ms.PersonID)
		if !ok {
			continue
		}
		j, ok := m.ItemIndex(ms.ItemID)
		if !ok {
			continue
		}
		values[i][j] = ms.Value
		sums[j] += ms.Value
		counts[j]++
	}
	for j := 0; j < m.Cols(); j++ {
		if counts[j] == 0 {
			continue
		}
		mean := sums[j] / float64(counts[j])
		for i := 0; i < m.Rows(); i++ {
			if !m.Observed(i, j) {
				values[i][j] = mean
			}
		}
	}
	return m.WithValues(values)
}
