package ingest

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// ItemMapFile is the on-disk layout of an item map. JSON documents parse too.
//
//	constructs:
//	  RT: Risk Taking
//	items:
//	  - {item: q1, construct: RT}
//	  - {item: q2, construct: RT, reverse: true}
//	reverse_items: [q7]
type ItemMapFile struct {
	Constructs   map[string]string   `yaml:"constructs"`
	Items        []model.ItemMapping `yaml:"items"`
	ReverseItems []string            `yaml:"reverse_items"`
}

// Build converts the file into the lookup used by the scorer.
func (f ItemMapFile) Build() *model.ItemConstructMap {
	return model.NewItemConstructMap(f.Items,
		model.WithConstructNames(f.Constructs),
		model.WithReverseItems(f.ReverseItems...),
	)
}

// LoadItemMap reads an item map file.
func LoadItemMap(path string) (*model.ItemConstructMap, error) {
	var f ItemMapFile
	if err := decode(path, &f); err != nil {
		return nil, err
	}
	return f.Build(), nil
}

// LoadNorms reads per-construct normative data keyed by construct code.
func LoadNorms(path string) (model.Norms, error) {
	norms := model.Norms{}
	if err := decode(path, &norms); err != nil {
		return nil, err
	}
	return norms, nil
}

// WriteItemMap writes an item map file.
func WriteItemMap(path string, f ItemMapFile) error {
	b, err := yaml.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "encode item map")
	}
	return errors.Wrapf(os.WriteFile(path, b, 0o600), "write %s", path)
}

func decode(path string, out any) error {
	b, err := os.ReadFile(path) //nolint:gosec // path is operator supplied
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}
