// Package synth generates synthetic Likert datasets with known archetypes
// and submits them to a running victoria server.
package synth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/okian/victoria/internal/adapters/ingest"
	"github.com/okian/victoria/internal/domain/model"
)

const (
	profileSpread  = 1.5 // archetype construct means are drawn from [-spread, spread]
	personSpread   = 0.4 // within-archetype standard deviation
	difficultySpan = 1.0 // item difficulties are drawn from [-span, span]
	categorySlope  = 1.2 // category units per logit
	midCategory    = 3.0
)

// Dataset is one generated survey.
type Dataset struct {
	Responses []model.Response
	ItemMap   ingest.ItemMapFile
	// Archetype holds the generating group of every person.
	Archetype map[string]int
}

// Generate builds a dataset. The same Config always yields the same Dataset.
func Generate(cfg Config) (*Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible test data

	constructs := make([]string, cfg.Constructs)
	names := make(map[string]string, cfg.Constructs)
	for c := range constructs {
		constructs[c] = string(rune('A' + c))
		names[constructs[c]] = fmt.Sprintf("Construct %s", constructs[c])
	}

	type item struct {
		id         string
		construct  int
		difficulty float64
		reverse    bool
	}
	items := make([]item, 0, cfg.Constructs*cfg.ItemsPerConstruct)
	mappings := make([]model.ItemMapping, 0, cap(items))
	for c, code := range constructs {
		for i := range cfg.ItemsPerConstruct {
			it := item{
				id:         fmt.Sprintf("%s%02d", code, i+1),
				construct:  c,
				difficulty: (rng.Float64()*2 - 1) * difficultySpan,
				reverse:    rng.Float64() < cfg.ReverseRate,
			}
			items = append(items, it)
			mappings = append(mappings, model.ItemMapping{ItemID: it.id, Construct: code, Reverse: it.reverse})
		}
	}

	profiles := make([][]float64, cfg.Archetypes)
	for a := range profiles {
		profiles[a] = make([]float64, cfg.Constructs)
		for c := range profiles[a] {
			profiles[a][c] = (rng.Float64()*2 - 1) * profileSpread
		}
	}

	ds := &Dataset{
		ItemMap:   ingest.ItemMapFile{Constructs: names, Items: mappings},
		Archetype: make(map[string]int, cfg.Persons),
	}
	for range cfg.Persons {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, errors.Wrap(err, "person id")
		}
		pid := id.String()
		a := rng.Intn(cfg.Archetypes)
		ds.Archetype[pid] = a

		theta := make([]float64, cfg.Constructs)
		for c := range theta {
			theta[c] = profiles[a][c] + rng.NormFloat64()*personSpread
		}
		for _, it := range items {
			if rng.Float64() < cfg.MissingRate {
				continue
			}
			v := midCategory + categorySlope*(theta[it.construct]-it.difficulty) + rng.NormFloat64()*cfg.Noise
			category := clampCategory(v)
			if it.reverse {
				category = model.ScaleMax + model.ScaleMin - category
			}
			ds.Responses = append(ds.Responses, model.Response{PersonID: pid, ItemID: it.id, Category: category})
		}
	}
	return ds, nil
}

func clampCategory(v float64) int {
	c := int(math.Round(v))
	return max(model.ScaleMin, min(model.ScaleMax, c))
}
