package clustering

import (
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers each feature and scales it to unit population variance.
// Constant features keep a scale of 1.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

// FitScaler learns per-feature mean and scale from rows of equal width.
func FitScaler(x [][]float64) *StandardScaler {
	if len(x) == 0 {
		return &StandardScaler{}
	}
	width := len(x[0])
	s := &StandardScaler{mean: make([]float64, width), scale: make([]float64, width)}
	col := make([]float64, len(x))
	for j := 0; j < width; j++ {
		for i := range x {
			col[i] = x[i][j]
		}
		m, sd := stat.PopMeanStdDev(col, nil)
		s.mean[j] = m
		if sd == 0 {
			sd = 1
		}
		s.scale[j] = sd
	}
	return s
}

// Transform returns standardized copies of the rows.
func (s *StandardScaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = (v - s.mean[j]) / s.scale[j]
		}
	}
	return out
}

// Width is the number of features the scaler was fitted on.
func (s *StandardScaler) Width() int { return len(s.mean) }
