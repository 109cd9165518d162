package synth

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/adapters/ingest"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

const (
	responsesBase = "responses"
	itemMapFile   = "item_map.yaml"
	sheetName     = "Responses"
)

var header = []string{"person_id", "item_id", "category"} //nolint:gochecknoglobals // column layout read back by ingest

// Files are the paths written by WriteFiles.
type Files struct {
	Responses string
	ItemMap   string
}

// WriteCSV writes responses in the long layout ingest reads.
func WriteCSV(w io.Writer, responses []model.Response) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, r := range responses {
		if err := cw.Write([]string{r.PersonID, r.ItemID, strconv.Itoa(r.Category)}); err != nil {
			return errors.Wrap(err, "write row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// WriteXLSX writes responses to a single-sheet workbook at path.
func WriteXLSX(path string, responses []model.Response) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = errors.CombineErrors(err, f.Close())
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return errors.Wrap(err, "name sheet")
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return errors.Wrap(err, "stream writer")
	}
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := sw.SetRow("A1", row); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, r := range responses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		if err := sw.SetRow(cell, []any{r.PersonID, r.ItemID, r.Category}); err != nil {
			return errors.Wrapf(err, "write row %d", i+2)
		}
	}
	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, "flush sheet")
	}
	return errors.Wrapf(f.SaveAs(path), "save %s", path)
}

// WriteFiles writes the responses and the item map into dir.
func WriteFiles(ctx context.Context, dir string, ds *Dataset, format string) (Files, error) {
	if err := ctx.Err(); err != nil {
		return Files{}, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Files{}, errors.Wrapf(err, "create %s", dir)
	}
	files := Files{
		Responses: filepath.Join(dir, responsesBase+"."+format),
		ItemMap:   filepath.Join(dir, itemMapFile),
	}

	switch format {
	case FormatCSV:
		f, err := os.Create(files.Responses) //nolint:gosec // operator supplied output dir
		if err != nil {
			return Files{}, errors.Wrapf(err, "create %s", files.Responses)
		}
		werr := WriteCSV(f, ds.Responses)
		if err := errors.CombineErrors(werr, f.Close()); err != nil {
			return Files{}, err
		}
	case FormatXLSX:
		if err := WriteXLSX(files.Responses, ds.Responses); err != nil {
			return Files{}, err
		}
	default:
		return Files{}, errors.Wrapf(ErrInvalidConfig, "format %q", format)
	}

	if err := ingest.WriteItemMap(files.ItemMap, ds.ItemMap); err != nil {
		return Files{}, err
	}
	return files, nil
}
