package scoring

import (
	"gonum.org/v1/gonum/stat"
)

// CronbachAlpha computes internal consistency from item columns of equal length
// (one column per item, one row per respondent). Sample variances are used.
// The result is clamped to [0, 1]; zero total variance yields 0. ok is false when
// fewer than two items or two respondents are given.
func CronbachAlpha(columns [][]float64) (alpha float64, ok bool) {
	k := len(columns)
	if k < 2 {
		return 0, false
	}
	n := len(columns[0])
	if n < 2 {
		return 0, false
	}
	totals := make([]float64, n)
	sumItemVar := 0.0
	for _, col := range columns {
		if len(col) != n {
			return 0, false
		}
		sumItemVar += stat.Variance(col, nil)
		for r, v := range col {
			totals[r] += v
		}
	}
	totalVar := stat.Variance(totals, nil)
	if totalVar == 0 {
		return 0, true
	}
	a := float64(k) / float64(k-1) * (1 - sumItemVar/totalVar)
	switch {
	case a < 0:
		a = 0
	case a > 1:
		a = 1
	}
	return a, true
}
