// Package clustering groups person profiles into named archetypes with k-means.
package clustering

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/stats"
	"github.com/okian/victoria/pkg/logger"
)

// Candidate is one evaluated cluster count.
type Candidate struct {
	K          int     `json:"k"`
	Silhouette float64 `json:"silhouette"`
	Scored     bool    `json:"scored"`
}

// Selection records how the cluster count was chosen.
type Selection struct {
	Candidates []Candidate `json:"candidates"`
	Chosen     int         `json:"chosen"`
	Fallback   bool        `json:"fallback"`
}

// Result is the outcome of ClusterPersons.
type Result struct {
	Clusters         []model.Cluster
	Labels           map[string]int
	K                int
	Inertia          float64
	Silhouette       *float64
	CalinskiHarabasz *float64
	Selection        *Selection
	Warnings         []model.Warning
}

// ArchetypeClusterer owns a fitted scaler and centroids after ClusterPersons.
// It is not safe for concurrent use.
type ArchetypeClusterer struct {
	nClusters   int
	optimize    bool
	maxClusters int
	seed        int64
	nInit       int
	maxIter     int
	tol         float64
	log         logger.Logger

	scaler    *StandardScaler
	centroids [][]float64
}

// New creates an unfitted clusterer.
func New(opts ...Option) *ArchetypeClusterer {
	c := &ArchetypeClusterer{
		nClusters:   DefaultClusters,
		maxClusters: DefaultMaxClusters,
		seed:        DefaultSeed,
		nInit:       DefaultNInit,
		maxIter:     DefaultMaxIter,
		tol:         DefaultTolerance,
		log:         logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fitted reports whether ClusterPersons has produced a model.
func (c *ArchetypeClusterer) Fitted() bool { return c.scaler != nil && len(c.centroids) > 0 }

func (c *ArchetypeClusterer) engine(k int) kmeans {
	return kmeans{k: k, nInit: c.nInit, maxIter: c.maxIter, tol: c.tol, seed: c.seed}
}

// features flattens profiles and zero-pads them to a common width.
// Scores are packed in each profile's own order, so a profile missing an
// early construct shifts its later scores into other columns.
func features(profiles []model.PersonProfile, width int) (rows [][]float64, padded int) {
	vectors := make([][]float64, len(profiles))
	for i, p := range profiles {
		vectors[i] = p.Features()
		if len(vectors[i]) > width {
			width = len(vectors[i])
		}
	}
	rows = make([][]float64, len(vectors))
	for i, v := range vectors {
		if len(v) < width {
			padded++
		}
		rows[i] = make([]float64, width)
		copy(rows[i], v)
	}
	return rows, padded
}

// ClusterPersons fits the scaler and k-means model and labels every profile.
// With no profiles it logs an error and returns an empty result.
func (c *ArchetypeClusterer) ClusterPersons(ctx context.Context, profiles []model.PersonProfile) *Result {
	res := &Result{Clusters: []model.Cluster{}, Labels: map[string]int{}}
	if len(profiles) == 0 {
		c.log.Error(ctx, "no feature vectors available for clustering")
		return res
	}

	raw, padded := features(profiles, 0)
	if padded > 0 {
		msg := fmt.Sprintf("%d feature vectors were zero-padded to width %d; "+
			"their construct scores are packed from the first column, so columns can hold different constructs across persons",
			padded, len(raw[0]))
		c.log.Warn(ctx, msg)
		res.Warnings = append(res.Warnings, model.Warning{Stage: "clustering", Code: model.WarnFeaturePadding, Message: msg})
	}
	c.scaler = FitScaler(raw)
	x := c.scaler.Transform(raw)
	n := len(x)

	var fit kmeansResult
	if c.optimize {
		sel, fits := c.selectK(ctx, x)
		res.Selection = &sel
		res.K = sel.Chosen
		if sel.Fallback {
			msg := fmt.Sprintf("silhouette could not be computed, using %d clusters", sel.Chosen)
			res.Warnings = append(res.Warnings, model.Warning{Stage: "clustering", Code: model.WarnSelectionFallback, Message: msg})
		}
		if f, ok := fits[res.K]; ok {
			fit = f
		}
	} else {
		res.K = c.nClusters
	}
	if res.K > n {
		msg := fmt.Sprintf("reducing clusters from %d to %d persons", res.K, n)
		c.log.Warn(ctx, msg)
		res.Warnings = append(res.Warnings, model.Warning{Stage: "clustering", Code: model.WarnClustersReduced, Message: msg})
		res.K = max(1, n)
	}
	if fit.labels == nil {
		fit = c.engine(res.K).fit(x)
	}
	c.centroids = fit.centroids
	res.Inertia = fit.inertia

	for i, p := range profiles {
		res.Labels[p.PersonID] = fit.labels[i]
	}
	if s, ok := Silhouette(x, fit.labels); ok {
		res.Silhouette = &s
	}
	if ch, ok := CalinskiHarabasz(x, fit.labels); ok {
		res.CalinskiHarabasz = &ch
	}
	res.Clusters = describe(profiles, x, fit.labels, res.K)

	fields := []logger.Field{logger.Int("clusters", res.K), logger.Int("persons", n), logger.Float64("inertia", fit.inertia)}
	if res.Silhouette != nil {
		fields = append(fields, logger.Float64("silhouette", *res.Silhouette))
	}
	if res.CalinskiHarabasz != nil {
		fields = append(fields, logger.Float64("calinski_harabasz", *res.CalinskiHarabasz))
	}
	c.log.Info(ctx, "clustered persons", fields...)
	return res
}

// selectK evaluates k in [2, min(maxClusters, n-1)] and keeps the first best silhouette.
func (c *ArchetypeClusterer) selectK(ctx context.Context, x [][]float64) (Selection, map[int]kmeansResult) {
	sel := Selection{}
	fits := map[int]kmeansResult{}
	upper := min(c.maxClusters, len(x)-1)
	best := 0.0
	for k := 2; k <= upper; k++ {
		f := c.engine(k).fit(x)
		fits[k] = f
		s, ok := Silhouette(x, f.labels)
		sel.Candidates = append(sel.Candidates, Candidate{K: k, Silhouette: s, Scored: ok})
		c.log.Debug(ctx, "evaluated cluster count", logger.Int("k", k), logger.Float64("silhouette", s), logger.Bool("scored", ok))
		if ok && (sel.Chosen == 0 || s > best) {
			sel.Chosen, best = k, s
		}
	}
	if sel.Chosen == 0 {
		sel.Chosen = fallbackClusters
		sel.Fallback = true
	}
	c.log.Info(ctx, "selected cluster count", logger.Int("k", sel.Chosen), logger.Bool("fallback", sel.Fallback))
	return sel, fits
}

// OptimizeClusters runs the silhouette search on profiles without keeping a model.
func (c *ArchetypeClusterer) OptimizeClusters(ctx context.Context, profiles []model.PersonProfile) Selection {
	if len(profiles) == 0 {
		c.log.Error(ctx, "no feature vectors available for cluster optimization")
		return Selection{Chosen: fallbackClusters, Fallback: true}
	}
	raw, _ := features(profiles, 0)
	sel, _ := c.selectK(ctx, FitScaler(raw).Transform(raw))
	return sel
}

func describe(profiles []model.PersonProfile, x [][]float64, labels []int, k int) []model.Cluster {
	width := len(x[0])
	clusters := make([]model.Cluster, k)
	members := make([][][]float64, k)
	for c := range clusters {
		name := ArchetypeName(c, k)
		clusters[c] = model.Cluster{ClusterID: c, ArchetypeName: name, Description: ArchetypeDescription(name), MemberIDs: []string{}}
	}
	for i, l := range labels {
		clusters[l].MemberIDs = append(clusters[l].MemberIDs, profiles[i].PersonID)
		members[l] = append(members[l], x[i])
	}
	for c := range clusters {
		clusters[c].Size = len(members[c])
		clusters[c].Centroid = make([]float64, width)
		clusters[c].SummaryStats = make([]model.FeatureStats, width)
		if len(members[c]) == 0 {
			continue
		}
		col := make([]float64, len(members[c]))
		for j := 0; j < width; j++ {
			for i, row := range members[c] {
				col[i] = row[j]
			}
			d := stats.Describe(col)
			clusters[c].Centroid[j] = d.Mean
			clusters[c].SummaryStats[j] = model.FeatureStats{
				Mean: d.Mean,
				Std:  d.Std,
				P25:  stats.Percentile(col, 25),
				P50:  d.Median,
				P75:  stats.Percentile(col, 75),
			}
		}
	}
	return clusters
}

// Predict assigns new profiles to the nearest fitted centroid using the fitted scaler.
func (c *ArchetypeClusterer) Predict(_ context.Context, profiles []model.PersonProfile) ([]int, error) {
	if !c.Fitted() {
		return nil, ErrModelNotFitted
	}
	width := c.scaler.Width()
	raw, _ := features(profiles, width)
	for i, row := range raw {
		if len(row) > width {
			return nil, errors.Wrapf(ErrFeatureMismatch, "profile %s has %d features, model has %d", profiles[i].PersonID, len(row), width)
		}
	}
	labels := make([]int, len(raw))
	assign(c.scaler.Transform(raw), c.centroids, labels)
	return labels, nil
}

// Overview summarizes cluster sizes and shares.
func Overview(clusters []model.Cluster) model.ClusterOverview {
	o := model.ClusterOverview{TotalClusters: len(clusters), Archetypes: make([]model.ArchetypeShare, 0, len(clusters))}
	for _, c := range clusters {
		o.TotalParticipants += c.Size
	}
	for _, c := range clusters {
		share := model.ArchetypeShare{ArchetypeName: c.ArchetypeName, Size: c.Size}
		if o.TotalParticipants > 0 {
			share.Percentage = float64(c.Size) / float64(o.TotalParticipants) * 100
		}
		o.Archetypes = append(o.Archetypes, share)
	}
	return o
}
