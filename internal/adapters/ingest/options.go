package ingest

import "github.com/okian/victoria/pkg/logger"

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.log = l
		}
	}
}

// WithSheet selects the workbook sheet read from .xlsx files. Defaults to the first sheet.
func WithSheet(name string) Option {
	return func(r *Reader) { r.sheet = name }
}
