package ingest

import "github.com/cockroachdb/errors"

// Sentinel errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrMissingColumn     = errors.New("required column missing")
	ErrNoSheet           = errors.New("workbook has no sheets")
)
