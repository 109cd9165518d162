package synth

import (
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Format of the generated response file.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Config holds configuration for a synthetic dataset.
type Config struct {
	Persons           int     `validate:"gte=2"`
	Constructs        int     `validate:"gte=1,lte=26"` // coded A, B, ...
	ItemsPerConstruct int     `validate:"gte=1"`
	Archetypes        int     `validate:"gte=1"` // latent groups persons are drawn from
	MissingRate       float64 `validate:"gte=0,lt=1"`
	ReverseRate       float64 `validate:"gte=0,lte=1"` // share of reverse-keyed items
	Noise             float64 `validate:"gte=0"`       // in category units
	Seed              int64
	Format            string `validate:"oneof=csv xlsx"`
}

// DefaultConfig returns a small, well separated dataset.
func DefaultConfig() Config {
	return Config{
		Persons:           200,
		Constructs:        4,
		ItemsPerConstruct: 6,
		Archetypes:        3,
		MissingRate:       0.02,
		ReverseRate:       0.2,
		Noise:             0.7,
		Seed:              42,
		Format:            FormatCSV,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return errors.Mark(errors.Wrap(err, "validate synth config"), ErrInvalidConfig)
	}
	return nil
}
