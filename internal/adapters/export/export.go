// Package export writes the artifacts of a pipeline run to a directory.
//
// transformed_data.csv has one row per observed response. Cells that the
// matrix builder filled with a column mean are not written. E1 numbers the
// person and E2 numbers the response within that person, both from 1. Files
// that expect one row per matrix cell with a single running E2 counter do not
// line up with it row for row.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/pipeline"
	"github.com/okian/victoria/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Artifact file names inside a run directory.
const (
	FileProfiles    = "profiles.json"
	FilePersons     = "person_abilities.csv"
	FileItems       = "item_difficulties.csv"
	FileMeasures    = "transformed_data.csv"
	FileClusters    = "clusters.json"
	FileSummary     = "model_summary.json"
	dirPermissions  = 0o750
	filePermissions = 0o600
)

// ErrNoResult is returned when there is nothing to export.
var ErrNoResult = errors.New("no pipeline result to export")

// Exporter writes one directory per run under a root directory.
type Exporter struct {
	root string
	log  logger.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an exporter rooted at dir.
func New(dir string, opts ...Option) *Exporter {
	e := &Exporter{root: dir, log: logger.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type clustersDoc struct {
	Clusters []model.Cluster       `json:"clusters"`
	Labels   map[string]int        `json:"labels"`
	Overview model.ClusterOverview `json:"overview"`
}

// Export writes every artifact of res and returns the run directory.
func (e *Exporter) Export(ctx context.Context, res *pipeline.Result, sum Summary) (string, error) {
	if res == nil || res.Scoring == nil || res.Clustering == nil || res.Rasch == nil {
		return "", ErrNoResult
	}
	dir := filepath.Join(e.root, res.RunID)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return writeJSON(filepath.Join(dir, FileProfiles), res.Profiles()) })
	g.Go(func() error {
		return writeJSON(filepath.Join(dir, FileClusters), clustersDoc{
			Clusters: res.Clustering.Clusters,
			Labels:   res.Clustering.Labels,
			Overview: res.Overview,
		})
	})
	g.Go(func() error { return writeJSON(filepath.Join(dir, FileSummary), sum) })
	g.Go(func() error {
		return writeCSV(filepath.Join(dir, FilePersons), estimateRows("Persons", "Ability", res.Rasch.Parameters.Persons()))
	})
	g.Go(func() error {
		return writeCSV(filepath.Join(dir, FileItems), estimateRows("Assessment_Items", "Difficulty", res.Rasch.Parameters.Items()))
	})
	g.Go(func() error { return writeCSV(filepath.Join(dir, FileMeasures), measureRows(res.Measures)) })
	if err := g.Wait(); err != nil {
		return "", err
	}

	e.log.Info(ctx, "exported run", logger.String("run_id", res.RunID), logger.String("dir", dir))
	return dir, nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func estimateRows(idHeader, measureHeader string, est []model.ParameterEstimate) [][]string {
	rows := make([][]string, 0, len(est)+1)
	rows = append(rows, []string{idHeader, measureHeader, "SE", "Infit", "Outfit"})
	for _, p := range est {
		rows = append(rows, []string{p.ID, formatFloat(p.Measure), formatFloat(p.SE), formatFloat(p.Infit), formatFloat(p.Outfit)})
	}
	return rows
}

func measureRows(measures []model.Measure) [][]string {
	rows := make([][]string, 0, len(measures)+1)
	rows = append(rows, []string{"Measure", "E1", "E2", "Persons", "Assessment_Items"})
	for _, m := range measures {
		rows = append(rows, []string{formatFloat(m.Value), strconv.Itoa(m.E1), strconv.Itoa(m.E2), m.PersonID, m.ItemID})
	}
	return rows
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", filepath.Base(path))
	}
	return errors.Wrapf(os.WriteFile(path, b, filePermissions), "write %s", path)
}

func writeCSV(path string, rows [][]string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePermissions) //nolint:gosec // path built from the output root
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() { err = errors.CombineErrors(err, f.Close()) }()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
