package clustering

import (
	"math"
)

func distinct(labels []int) int {
	seen := map[int]struct{}{}
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

// Silhouette is the mean silhouette coefficient with Euclidean distance.
// ok is false unless the labeling has between 2 and n-1 distinct clusters.
func Silhouette(x [][]float64, labels []int) (score float64, ok bool) {
	n := len(x)
	k := distinct(labels)
	if k < 2 || k > n-1 {
		return 0, false
	}
	sizes := map[int]int{}
	for _, l := range labels {
		sizes[l]++
	}
	total := 0.0
	for i := range x {
		if sizes[labels[i]] == 1 {
			continue
		}
		sums := map[int]float64{}
		for j := range x {
			if i == j {
				continue
			}
			sums[labels[j]] += math.Sqrt(sqDist(x[i], x[j]))
		}
		a := sums[labels[i]] / float64(sizes[labels[i]]-1)
		b := math.Inf(1)
		for l, sz := range sizes {
			if l == labels[i] {
				continue
			}
			b = math.Min(b, sums[l]/float64(sz))
		}
		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(n), true
}

// CalinskiHarabasz is the between to within dispersion ratio.
// ok is false unless the labeling has between 2 and n-1 distinct clusters.
func CalinskiHarabasz(x [][]float64, labels []int) (score float64, ok bool) {
	n := len(x)
	k := distinct(labels)
	if k < 2 || k > n-1 {
		return 0, false
	}
	width := len(x[0])
	overall := make([]float64, width)
	for _, row := range x {
		for j, v := range row {
			overall[j] += v / float64(n)
		}
	}
	centers := map[int][]float64{}
	sizes := map[int]int{}
	for i, row := range x {
		c, exists := centers[labels[i]]
		if !exists {
			c = make([]float64, width)
			centers[labels[i]] = c
		}
		for j, v := range row {
			c[j] += v
		}
		sizes[labels[i]]++
	}
	for l, c := range centers {
		for j := range c {
			c[j] /= float64(sizes[l])
		}
	}
	between, within := 0.0, 0.0
	for l, c := range centers {
		between += float64(sizes[l]) * sqDist(c, overall)
	}
	for i, row := range x {
		within += sqDist(row, centers[labels[i]])
	}
	if within == 0 {
		return 1, true
	}
	return between * float64(n-k) / (within * float64(k-1)), true
}
