// Package scoring aggregates item-level measures into construct scores and person profiles.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/victoria/internal/domain/matrix"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/rasch"
	"github.com/okian/victoria/internal/domain/stats"
	"github.com/okian/victoria/pkg/logger"
)

// Kind tells the scorer what the matrix values are.
type Kind int

const (
	// KindRaw values are response category codes.
	KindRaw Kind = iota
	// KindLogit values are Rasch logit measures.
	KindLogit
)

func (k Kind) String() string {
	if k == KindLogit {
		return "logit"
	}
	return "raw"
}

// Input is what the scorer consumes.
type Input struct {
	Values  *matrix.ResponseMatrix
	Kind    Kind
	ItemMap *model.ItemConstructMap
}

// GroupStatistics summarizes scores across persons.
type GroupStatistics struct {
	Overall    stats.Summary            `json:"overall"`
	Constructs map[string]stats.Summary `json:"constructs"`
}

// Metadata records how a result was produced.
type Metadata struct {
	Method            Method  `json:"method"`
	Kind              string  `json:"kind"`
	RaschScoring      bool    `json:"rasch_scoring"`
	MinItems          int     `json:"min_items_per_construct"`
	MinCompletionRate float64 `json:"min_completion_rate"`
	Persons           int     `json:"persons"`
	Constructs        int     `json:"constructs"`
}

// Result is the scorer output.
type Result struct {
	Profiles      []model.PersonProfile
	Group         GroupStatistics
	Reliabilities map[string]*float64
	Metadata      Metadata
	Warnings      []model.Warning
}

// Scorer turns a measure matrix into person profiles.
type Scorer interface {
	Score(ctx context.Context, in Input) (*Result, error)
}

// ConstructScorer implements Scorer.
type ConstructScorer struct {
	method            Method
	raschScoring      bool
	minItems          int
	minCompletionRate float64
	norms             model.Norms
	log               logger.Logger
}

// NewConstructScorer creates a scorer.
func NewConstructScorer(opts ...Option) *ConstructScorer {
	s := &ConstructScorer{
		method:            MethodStandardized,
		raschScoring:      true,
		minItems:          DefaultMinItems,
		minCompletionRate: DefaultMinCompletionRate,
		norms:             model.Norms{},
		log:               logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// layout is the column plan shared by every person of one Score call.
type layout struct {
	usable     []int            // columns that take part in scoring
	constructs []string         // construct codes present in the matrix, declaration order
	columns    map[string][]int // construct -> its columns
	totalItems int              // completion denominator
	adjusted   [][]float64      // values after reverse scoring
}

// Score implements Scorer.
func (s *ConstructScorer) Score(ctx context.Context, in Input) (*Result, error) {
	if in.Values.Empty() {
		return nil, ErrEmptyInput
	}
	m := in.Values
	res := &Result{
		Reliabilities: map[string]*float64{},
		Metadata: Metadata{
			Method:            s.method,
			Kind:              in.Kind.String(),
			RaschScoring:      s.raschScoring,
			MinItems:          s.minItems,
			MinCompletionRate: s.minCompletionRate,
			Persons:           m.Rows(),
		},
	}

	lay := s.plan(ctx, m, in.ItemMap, res)
	res.Metadata.Constructs = len(lay.constructs)

	for _, code := range lay.constructs {
		res.Reliabilities[code] = constructReliability(m, lay, code)
	}

	persons := m.Persons()
	res.Profiles = make([]model.PersonProfile, 0, len(persons))
	lowCompletion := 0
	for i, pid := range persons {
		p := s.profile(m, in, lay, res.Reliabilities, i, pid)
		if p.CompletionRate < s.minCompletionRate {
			lowCompletion++
			res.Warnings = append(res.Warnings, model.Warning{
				Stage:    "scoring",
				Code:     model.WarnLowCompletion,
				PersonID: pid,
				Message:  fmt.Sprintf("completion rate %.2f is below %.2f", p.CompletionRate, s.minCompletionRate),
			})
		}
		res.Profiles = append(res.Profiles, p)
	}
	if lowCompletion > 0 {
		s.log.Warn(ctx, "persons below the completion threshold", logger.Int("persons", lowCompletion))
	}

	res.Group = groupStatistics(res.Profiles, lay.constructs)
	s.log.Info(ctx, "scored persons",
		logger.Int("persons", len(res.Profiles)),
		logger.Int("constructs", len(lay.constructs)),
		logger.String("method", string(s.method)),
		logger.String("kind", in.Kind.String()),
	)
	return res, nil
}

// plan decides which columns are scored, groups them by construct and applies reverse scoring.
func (s *ConstructScorer) plan(ctx context.Context, m *matrix.ResponseMatrix, items *model.ItemConstructMap, res *Result) layout {
	lay := layout{columns: map[string][]int{}, totalItems: items.Len()}

	var unmapped []string
	for j, id := range m.Items() {
		if c, ok := items.Construct(id); ok {
			lay.usable = append(lay.usable, j)
			lay.columns[c] = append(lay.columns[c], j)
		} else {
			unmapped = append(unmapped, id)
		}
	}

	switch {
	case len(lay.usable) == 0:
		lay.totalItems = m.Cols()
		for j := 0; j < m.Cols(); j++ {
			lay.usable = append(lay.usable, j)
		}
		msg := "no items are mapped to constructs, scoring overall only"
		s.log.Warn(ctx, msg, logger.Int("items", m.Cols()))
		res.Warnings = append(res.Warnings, model.Warning{Stage: "scoring", Code: model.WarnNoMappedItems, Message: msg})
	case len(unmapped) > 0:
		msg := fmt.Sprintf("%d items are not mapped to any construct and were ignored", len(unmapped))
		s.log.Warn(ctx, msg, logger.Any("items", unmapped))
		res.Warnings = append(res.Warnings, model.Warning{Stage: "scoring", Code: model.WarnUnmappedItems, Message: msg})
	}

	for _, c := range items.Constructs() {
		cols := lay.columns[c]
		if len(cols) == 0 {
			continue
		}
		lay.constructs = append(lay.constructs, c)
		if len(cols) < s.minItems {
			msg := fmt.Sprintf("construct %s has %d items, fewer than the %d required", c, len(cols), s.minItems)
			s.log.Warn(ctx, msg, logger.String("construct", c))
			res.Warnings = append(res.Warnings, model.Warning{Stage: "scoring", Code: model.WarnSparseConstruct, Message: msg})
		}
	}

	lay.adjusted = reverseScored(m, items)
	return lay
}

// reverseScored mirrors reverse-keyed cells around the observed range of all reverse-keyed cells.
func reverseScored(m *matrix.ResponseMatrix, items *model.ItemConstructMap) [][]float64 {
	adjusted := m.Dense()
	ids := m.Items()
	lo, hi := math.Inf(1), math.Inf(-1)
	var cols []int
	for j, id := range ids {
		if !items.IsReverse(id) {
			continue
		}
		cols = append(cols, j)
		for i := 0; i < m.Rows(); i++ {
			if m.Observed(i, j) {
				lo = math.Min(lo, m.At(i, j))
				hi = math.Max(hi, m.At(i, j))
			}
		}
	}
	if math.IsInf(lo, 1) {
		return adjusted
	}
	for _, j := range cols {
		for i := range adjusted {
			adjusted[i][j] = hi + lo - adjusted[i][j]
		}
	}
	return adjusted
}

// constructReliability computes alpha over the rows that answered every item of the construct.
func constructReliability(m *matrix.ResponseMatrix, lay layout, code string) *float64 {
	cols := lay.columns[code]
	if len(cols) < 2 {
		return nil
	}
	columns := make([][]float64, len(cols))
	for i := 0; i < m.Rows(); i++ {
		complete := true
		for _, j := range cols {
			if !m.Observed(i, j) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for k, j := range cols {
			columns[k] = append(columns[k], lay.adjusted[i][j])
		}
	}
	alpha, ok := CronbachAlpha(columns)
	if !ok {
		return nil
	}
	return &alpha
}

func (s *ConstructScorer) profile(m *matrix.ResponseMatrix, in Input, lay layout, rel map[string]*float64, i int, pid string) model.PersonProfile {
	p := model.PersonProfile{PersonID: pid, ConstructScores: []model.ConstructScore{}}

	var answered []float64
	for _, j := range lay.usable {
		if m.Observed(i, j) {
			answered = append(answered, lay.adjusted[i][j])
		}
	}
	if lay.totalItems > 0 {
		p.CompletionRate = math.Min(1, float64(len(answered))/float64(lay.totalItems))
	}

	sum := 0.0
	for _, code := range lay.constructs {
		var values []float64
		for _, j := range lay.columns[code] {
			if m.Observed(i, j) {
				values = append(values, lay.adjusted[i][j])
			}
		}
		if len(values) < s.minItems {
			continue
		}
		norm := s.norms[code]
		cs := model.ConstructScore{
			PersonID:      pid,
			ConstructCode: code,
			ConstructName: in.ItemMap.ConstructName(code),
			Score:         s.constructScore(values, in.Kind, norm),
			ItemCount:     len(values),
		}
		if len(values) >= 2 && rel[code] != nil {
			r := *rel[code]
			cs.Reliability = &r
		}
		if len(norm.Values) > 0 {
			pct := PercentileAgainst(cs.Score, norm.Values)
			cs.Percentile = &pct
		}
		p.ConstructScores = append(p.ConstructScores, cs)
		sum += cs.Score
	}

	switch {
	case len(p.ConstructScores) > 0:
		p.OverallScore = sum / float64(len(p.ConstructScores))
	case len(answered) > 0:
		p.OverallScore = mean(answered)
	}
	return p
}

func (s *ConstructScorer) constructScore(values []float64, kind Kind, norm model.ConstructNorm) float64 {
	m := mean(values)
	switch s.method {
	case MethodRaw:
		return m
	case MethodPercentile:
		if len(norm.Values) > 0 {
			return PercentileAgainst(m, norm.Values)
		}
		if kind == KindLogit {
			return rasch.PercentileFromLogit(m)
		}
		return LinearPercentile(m)
	default:
		if s.raschScoring {
			if kind == KindLogit {
				return TScore(m)
			}
			return TScore(proportionLogit(values, norm))
		}
		return TScore(zScore(m, norm))
	}
}

func groupStatistics(profiles []model.PersonProfile, constructs []string) GroupStatistics {
	g := GroupStatistics{Constructs: make(map[string]stats.Summary, len(constructs))}
	overall := make([]float64, 0, len(profiles))
	byConstruct := make(map[string][]float64, len(constructs))
	for _, p := range profiles {
		overall = append(overall, p.OverallScore)
		for _, cs := range p.ConstructScores {
			byConstruct[cs.ConstructCode] = append(byConstruct[cs.ConstructCode], cs.Score)
		}
	}
	g.Overall = stats.Describe(overall)
	for _, c := range constructs {
		if vals := byConstruct[c]; len(vals) > 0 {
			g.Constructs[c] = stats.Describe(vals)
		}
	}
	return g
}
