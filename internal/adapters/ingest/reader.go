// Package ingest reads long-format Likert responses from CSV and XLSX files,
// and item maps and norms from YAML or JSON.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Accepted header names per column, matched case-insensitively.
var (
	personHeaders   = []string{"person_id", "persons", "person"}           //nolint:gochecknoglobals // static lookup
	itemHeaders     = []string{"item_id", "assessment_items", "item"}      //nolint:gochecknoglobals // static lookup
	categoryHeaders = []string{"category", "response", "measure", "value"} //nolint:gochecknoglobals // static lookup
)

// Reader parses response files.
type Reader struct {
	log   logger.Logger
	sheet string
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{log: logger.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFile reads responses from a .csv or .xlsx file.
func (r *Reader) ReadFile(ctx context.Context, path string) ([]model.Response, []model.Warning, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path) //nolint:gosec // path is operator supplied
		if err != nil {
			return nil, nil, errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()
		return r.ReadCSV(ctx, f)
	case ".xlsx":
		f, err := os.Open(path) //nolint:gosec // path is operator supplied
		if err != nil {
			return nil, nil, errors.Wrapf(err, "open %s", path)
		}
		defer func() { _ = f.Close() }()
		return r.ReadXLSX(ctx, f)
	default:
		return nil, nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
}

// ReadCSV reads a header row followed by one response per row.
func (r *Reader) ReadCSV(ctx context.Context, in io.Reader) ([]model.Response, []model.Warning, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse csv")
	}
	return r.parse(ctx, "csv", rows)
}

// ReadXLSX reads the configured sheet of a workbook with the same layout as ReadCSV.
func (r *Reader) ReadXLSX(ctx context.Context, in io.Reader) ([]model.Response, []model.Warning, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, ErrNoSheet
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read sheet %q", sheet)
	}
	return r.parse(ctx, "xlsx", rows)
}

type columns struct{ person, item, category int }

func findColumn(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func locate(header []string) (columns, error) {
	c := columns{
		person:   findColumn(header, personHeaders),
		item:     findColumn(header, itemHeaders),
		category: findColumn(header, categoryHeaders),
	}
	var missing []string
	if c.person < 0 {
		missing = append(missing, personHeaders[0])
	}
	if c.item < 0 {
		missing = append(missing, itemHeaders[0])
	}
	if c.category < 0 {
		missing = append(missing, categoryHeaders[0])
	}
	if len(missing) > 0 {
		return c, errors.Wrapf(ErrMissingColumn, "%s", strings.Join(missing, ", "))
	}
	return c, nil
}

// parseCategory accepts integers and integral decimals such as "4.0".
func parseCategory(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func (r *Reader) parse(ctx context.Context, source string, rows [][]string) ([]model.Response, []model.Warning, error) {
	if len(rows) == 0 {
		return nil, nil, errors.Wrap(ErrMissingColumn, "no header row")
	}
	cols, err := locate(rows[0])
	if err != nil {
		return nil, nil, err
	}

	out := make([]model.Response, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		pid, iid := cell(row, cols.person), cell(row, cols.item)
		v, ok := parseCategory(cell(row, cols.category))
		if pid == "" || iid == "" || !ok {
			skipped++
			continue
		}
		out = append(out, model.Response{PersonID: pid, ItemID: iid, Category: v})
	}

	var warnings []model.Warning
	if skipped > 0 {
		msg := fmt.Sprintf("skipped %d %s rows with a blank id or a non-integer category", skipped, source)
		r.log.Warn(ctx, msg, logger.Int("skipped", skipped))
		warnings = append(warnings, model.Warning{Stage: "ingest", Code: model.WarnUnparseableRow, Message: msg})
	}
	r.log.Debug(ctx, "read responses", logger.String("source", source), logger.Int("responses", len(out)))
	return out, warnings, nil
}
