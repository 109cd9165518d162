// Package matrix pivots long-format Likert responses into a dense person by item matrix.
package matrix

import (
	"context"
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/pkg/logger"
)

// ResponseMatrix is a dense person x item matrix. Persons and items are sorted.
// Cells that were never answered hold the column mean and are reported unobserved.
type ResponseMatrix struct {
	persons  []string
	items    []string
	values   [][]float64
	observed [][]bool
	personIx map[string]int
	itemIx   map[string]int
}

// Builder pivots responses into a ResponseMatrix.
type Builder struct {
	log      logger.Logger
	scaleMin int
	scaleMax int
}

// NewBuilder creates a builder.
func NewBuilder(opts ...Option) *Builder {
	b := defaults()
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type cellKey struct{ person, item string }

// Build pivots responses. The first value seen for a (person, item) pair wins.
func (b *Builder) Build(ctx context.Context, responses []model.Response) (*ResponseMatrix, []model.Warning, error) {
	var warnings []model.Warning

	cells := make(map[cellKey]int, len(responses))
	personSet := make(map[string]struct{})
	itemSet := make(map[string]struct{})
	duplicates, outOfScale := 0, 0
	for _, r := range responses {
		if r.Category < b.scaleMin || r.Category > b.scaleMax {
			outOfScale++
			continue
		}
		k := cellKey{r.PersonID, r.ItemID}
		if _, dup := cells[k]; dup {
			duplicates++
			continue
		}
		cells[k] = r.Category
		personSet[r.PersonID] = struct{}{}
		itemSet[r.ItemID] = struct{}{}
	}

	if outOfScale > 0 {
		msg := fmt.Sprintf("dropped %d responses outside the %d..%d scale", outOfScale, b.scaleMin, b.scaleMax)
		b.log.Warn(ctx, msg, logger.Int("dropped", outOfScale))
		warnings = append(warnings, model.Warning{Stage: "matrix", Code: model.WarnOutOfScale, Message: msg})
	}
	if duplicates > 0 {
		msg := fmt.Sprintf("found %d duplicate person/item responses, keeping the first", duplicates)
		b.log.Warn(ctx, msg, logger.Int("duplicates", duplicates))
		warnings = append(warnings, model.Warning{Stage: "matrix", Code: model.WarnDuplicateResponse, Message: msg})
	}

	if len(personSet) == 0 || len(itemSet) == 0 {
		return nil, warnings, errors.Wrapf(ErrEmptyInput, "%d responses yielded %d persons and %d items", len(responses), len(personSet), len(itemSet))
	}

	persons := sortedKeys(personSet)
	items := sortedKeys(itemSet)
	m := newMatrix(persons, items)

	sums := make([]float64, len(items))
	counts := make([]int, len(items))
	for k, v := range cells {
		i, j := m.personIx[k.person], m.itemIx[k.item]
		m.values[i][j] = float64(v)
		m.observed[i][j] = true
		sums[j] += float64(v)
		counts[j]++
	}
	for j := range items {
		mean := sums[j] / float64(counts[j])
		for i := range persons {
			if !m.observed[i][j] {
				m.values[i][j] = mean
			}
		}
	}

	b.log.Debug(ctx, "built response matrix",
		logger.Int("persons", len(persons)),
		logger.Int("items", len(items)),
		logger.Int("responses", len(cells)),
	)
	return m, warnings, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newMatrix(persons, items []string) *ResponseMatrix {
	m := &ResponseMatrix{
		persons:  persons,
		items:    items,
		values:   make([][]float64, len(persons)),
		observed: make([][]bool, len(persons)),
		personIx: make(map[string]int, len(persons)),
		itemIx:   make(map[string]int, len(items)),
	}
	for i, p := range persons {
		m.personIx[p] = i
		m.values[i] = make([]float64, len(items))
		m.observed[i] = make([]bool, len(items))
	}
	for j, it := range items {
		m.itemIx[it] = j
	}
	return m
}

// FromDense builds a matrix from explicit values. A nil observed mask marks every cell observed.
func FromDense(persons, items []string, values [][]float64, observed [][]bool) (*ResponseMatrix, error) {
	if len(persons) == 0 || len(items) == 0 {
		return nil, ErrEmptyInput
	}
	if len(values) != len(persons) || (observed != nil && len(observed) != len(persons)) {
		return nil, errors.Wrapf(ErrShape, "expected %d rows", len(persons))
	}
	m := newMatrix(append([]string(nil), persons...), append([]string(nil), items...))
	if len(m.personIx) != len(persons) || len(m.itemIx) != len(items) {
		return nil, errors.Wrap(ErrShape, "duplicate person or item id")
	}
	for i := range persons {
		if len(values[i]) != len(items) || (observed != nil && len(observed[i]) != len(items)) {
			return nil, errors.Wrapf(ErrShape, "row %d expected %d columns", i, len(items))
		}
		copy(m.values[i], values[i])
		for j := range items {
			m.observed[i][j] = observed == nil || observed[i][j]
		}
	}
	return m, nil
}

// WithValues returns a copy sharing ids and observed mask but holding new values.
func (m *ResponseMatrix) WithValues(values [][]float64) (*ResponseMatrix, error) {
	return FromDense(m.persons, m.items, values, m.observed)
}

// Persons returns the row ids.
func (m *ResponseMatrix) Persons() []string { return append([]string(nil), m.persons...) }

// Items returns the column ids.
func (m *ResponseMatrix) Items() []string { return append([]string(nil), m.items...) }

// Rows is the number of persons.
func (m *ResponseMatrix) Rows() int { return len(m.persons) }

// Cols is the number of items.
func (m *ResponseMatrix) Cols() int { return len(m.items) }

// Empty reports whether the matrix has no cells.
func (m *ResponseMatrix) Empty() bool { return m == nil || len(m.persons) == 0 || len(m.items) == 0 }

// At returns the value at row i, column j.
func (m *ResponseMatrix) At(i, j int) float64 { return m.values[i][j] }

// Observed reports whether cell (i, j) came from a response.
func (m *ResponseMatrix) Observed(i, j int) bool { return m.observed[i][j] }

// Row returns a copy of row i.
func (m *ResponseMatrix) Row(i int) []float64 { return append([]float64(nil), m.values[i]...) }

// Dense returns a deep copy of the values.
func (m *ResponseMatrix) Dense() [][]float64 {
	out := make([][]float64, len(m.values))
	for i := range m.values {
		out[i] = append([]float64(nil), m.values[i]...)
	}
	return out
}

// PersonIndex returns the row of a person.
func (m *ResponseMatrix) PersonIndex(id string) (int, bool) {
	i, ok := m.personIx[id]
	return i, ok
}

// ItemIndex returns the column of an item.
func (m *ResponseMatrix) ItemIndex(id string) (int, bool) {
	j, ok := m.itemIx[id]
	return j, ok
}

// ObservedCount is the number of answered cells in row i.
func (m *ResponseMatrix) ObservedCount(i int) int {
	n := 0
	for _, o := range m.observed[i] {
		if o {
			n++
		}
	}
	return n
}
