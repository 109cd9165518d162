package clustering

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type kmeansResult struct {
	labels     []int
	centroids  [][]float64
	inertia    float64
	iterations int
}

type kmeans struct {
	k       int
	nInit   int
	maxIter int
	tol     float64
	seed    int64
}

func sqDist(a, b []float64) float64 {
	d := 0.0
	for i := range a {
		diff := a[i] - b[i]
		d += diff * diff
	}
	return d
}

// fit runs nInit seeded k-means++ initializations and keeps the lowest inertia.
func (km kmeans) fit(x [][]float64) kmeansResult {
	rng := rand.New(rand.NewSource(km.seed)) //nolint:gosec // reproducible clustering
	tol := km.tol * meanVariance(x)
	var best kmeansResult
	for run := 0; run < km.nInit; run++ {
		r := km.lloyd(x, seedCentroids(x, km.k, rng), tol)
		if run == 0 || r.inertia < best.inertia {
			best = r
		}
	}
	return best
}

func meanVariance(x [][]float64) float64 {
	if len(x) == 0 || len(x[0]) == 0 {
		return 0
	}
	col := make([]float64, len(x))
	vars := make([]float64, len(x[0]))
	for j := range vars {
		for i := range x {
			col[i] = x[i][j]
		}
		_, sd := stat.PopMeanStdDev(col, nil)
		vars[j] = sd * sd
	}
	return stat.Mean(vars, nil)
}

// seedCentroids picks k starting centers with k-means++ weighting.
func seedCentroids(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(x)
	chosen := make([]bool, n)
	centers := make([][]float64, 0, k)
	first := rng.Intn(n)
	chosen[first] = true
	centers = append(centers, append([]float64(nil), x[first]...))

	d2 := make([]float64, n)
	for i := range x {
		d2[i] = sqDist(x[i], centers[0])
	}
	for len(centers) < k {
		total := floats.Sum(d2)
		next := -1
		if total > 0 {
			r := rng.Float64() * total
			acc := 0.0
			for i, d := range d2 {
				acc += d
				if acc >= r && d > 0 {
					next = i
					break
				}
			}
		}
		if next < 0 {
			// every remaining point coincides with a center
			free := make([]int, 0, n)
			for i, c := range chosen {
				if !c {
					free = append(free, i)
				}
			}
			if len(free) == 0 {
				next = rng.Intn(n)
			} else {
				next = free[rng.Intn(len(free))]
			}
		}
		chosen[next] = true
		centers = append(centers, append([]float64(nil), x[next]...))
		for i := range x {
			d2[i] = math.Min(d2[i], sqDist(x[i], centers[len(centers)-1]))
		}
	}
	return centers
}

func assign(x, centers [][]float64, labels []int) {
	for i, row := range x {
		best, bestD := 0, math.Inf(1)
		for c, center := range centers {
			if d := sqDist(row, center); d < bestD {
				best, bestD = c, d
			}
		}
		labels[i] = best
	}
}

func recompute(x [][]float64, labels []int, k int) ([][]float64, []int) {
	width := len(x[0])
	centers := make([][]float64, k)
	counts := make([]int, k)
	for c := range centers {
		centers[c] = make([]float64, width)
	}
	for i, row := range x {
		floats.Add(centers[labels[i]], row)
		counts[labels[i]]++
	}
	for c := range centers {
		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), centers[c])
		}
	}
	return centers, counts
}

// fillEmpty moves the point farthest from its center into each empty cluster,
// taking only from clusters that keep at least one member.
func fillEmpty(x [][]float64, labels []int, centers [][]float64, counts []int) bool {
	moved := false
	for c := range counts {
		if counts[c] > 0 {
			continue
		}
		far, farD := -1, -1.0
		for i, row := range x {
			if counts[labels[i]] < 2 {
				continue
			}
			if d := sqDist(row, centers[labels[i]]); d > farD {
				far, farD = i, d
			}
		}
		if far < 0 {
			return moved
		}
		counts[labels[far]]--
		labels[far] = c
		counts[c]++
		centers[c] = append([]float64(nil), x[far]...)
		moved = true
	}
	return moved
}

func (km kmeans) lloyd(x [][]float64, centers [][]float64, tol float64) kmeansResult {
	labels := make([]int, len(x))
	iter := 0
	for iter < km.maxIter {
		iter++
		assign(x, centers, labels)
		next, counts := recompute(x, labels, km.k)
		if fillEmpty(x, labels, next, counts) {
			next, _ = recompute(x, labels, km.k)
		}
		shift := 0.0
		for c := range centers {
			shift += sqDist(centers[c], next[c])
		}
		centers = next
		if shift <= tol {
			break
		}
	}

	assign(x, centers, labels)
	var counts []int
	centers, counts = recompute(x, labels, km.k)
	if fillEmpty(x, labels, centers, counts) {
		centers, _ = recompute(x, labels, km.k)
	}

	inertia := 0.0
	for i, row := range x {
		inertia += sqDist(row, centers[labels[i]])
	}
	return kmeansResult{labels: labels, centroids: centers, inertia: inertia, iterations: iter}
}
