// Package model contains the domain types passed between pipeline stages and adapters.
package model

import "sort"

// Likert scale bounds used when no other scale is configured.
const (
	ScaleMin = 1
	ScaleMax = 5
)

// Response is one answered item: the immutable input unit of the pipeline.
type Response struct {
	PersonID string
	ItemID   string
	Category int
}

// ItemMapping assigns an item to a construct.
type ItemMapping struct {
	ItemID    string `yaml:"item" json:"item"`
	Construct string `yaml:"construct" json:"construct"`
	Reverse   bool   `yaml:"reverse" json:"reverse"`
}

// ItemConstructMap is the read-only item to construct lookup for a run.
// Constructs keep the order in which they were first declared.
type ItemConstructMap struct {
	construct map[string]string
	items     map[string][]string
	order     []string
	reverse   map[string]struct{}
	names     map[string]string
}

// ItemMapOption configures an ItemConstructMap.
type ItemMapOption func(*ItemConstructMap)

// WithConstructNames overrides display names for construct codes.
func WithConstructNames(names map[string]string) ItemMapOption {
	return func(m *ItemConstructMap) {
		for code, name := range names {
			m.names[code] = name
		}
	}
}

// WithReverseItems flags additional items as reverse-scored.
func WithReverseItems(items ...string) ItemMapOption {
	return func(m *ItemConstructMap) {
		for _, id := range items {
			m.reverse[id] = struct{}{}
		}
	}
}

// NewItemConstructMap builds the lookup. The first mapping of an item wins.
func NewItemConstructMap(mappings []ItemMapping, opts ...ItemMapOption) *ItemConstructMap {
	m := &ItemConstructMap{
		construct: make(map[string]string, len(mappings)),
		items:     make(map[string][]string),
		reverse:   make(map[string]struct{}),
		names:     make(map[string]string),
	}
	for _, mp := range mappings {
		if mp.ItemID == "" || mp.Construct == "" {
			continue
		}
		if _, dup := m.construct[mp.ItemID]; dup {
			continue
		}
		m.construct[mp.ItemID] = mp.Construct
		if _, seen := m.items[mp.Construct]; !seen {
			m.order = append(m.order, mp.Construct)
		}
		m.items[mp.Construct] = append(m.items[mp.Construct], mp.ItemID)
		if mp.Reverse {
			m.reverse[mp.ItemID] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Construct returns the construct code of an item.
func (m *ItemConstructMap) Construct(itemID string) (string, bool) {
	if m == nil {
		return "", false
	}
	c, ok := m.construct[itemID]
	return c, ok
}

// Constructs returns construct codes in declaration order.
func (m *ItemConstructMap) Constructs() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.order...)
}

// Items returns the items of a construct in declaration order.
func (m *ItemConstructMap) Items(construct string) []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.items[construct]...)
}

// IsReverse reports whether an item is reverse-scored.
func (m *ItemConstructMap) IsReverse(itemID string) bool {
	if m == nil {
		return false
	}
	_, ok := m.reverse[itemID]
	return ok
}

// ReverseItems returns the reverse-scored items, sorted.
func (m *ItemConstructMap) ReverseItems() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.reverse))
	for id := range m.reverse {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len is the number of mapped items.
func (m *ItemConstructMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.construct)
}

// ConstructName resolves a display name: explicit names, then the built-in catalogue, then the code.
func (m *ItemConstructMap) ConstructName(code string) string {
	if m != nil {
		if n, ok := m.names[code]; ok && n != "" {
			return n
		}
	}
	return ConstructName(code)
}

// ConstructNorm is normative data for one construct.
type ConstructNorm struct {
	Mean             *float64           `yaml:"mean,omitempty" json:"mean,omitempty"`
	Std              *float64           `yaml:"std,omitempty" json:"std,omitempty"`
	Values           []float64          `yaml:"values,omitempty" json:"values,omitempty"`
	ItemDifficulties map[string]float64 `yaml:"item_difficulties,omitempty" json:"item_difficulties,omitempty"`
}

// Norms maps construct codes to their normative data.
type Norms map[string]ConstructNorm
