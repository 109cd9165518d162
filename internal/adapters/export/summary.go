package export

import (
	"time"

	"github.com/okian/victoria/internal/domain/clustering"
	"github.com/okian/victoria/internal/domain/model"
	"github.com/okian/victoria/internal/domain/pipeline"
	"github.com/okian/victoria/internal/domain/rasch"
	"github.com/okian/victoria/internal/domain/scoring"
)

// Summary is the machine-readable digest of one run. It is written as
// model_summary.json and stored alongside the run record.
type Summary struct {
	RunID            string                   `json:"run_id"`
	Source           string                   `json:"source,omitempty"`
	Fingerprint      string                   `json:"fingerprint,omitempty"`
	StartedAt        time.Time                `json:"started_at"`
	DurationMS       int64                    `json:"duration_ms"`
	Settings         pipeline.Settings        `json:"settings"`
	Persons          int                      `json:"persons"`
	Items            int                      `json:"items"`
	Rasch            rasch.ModelSummary       `json:"rasch"`
	MaxChange        float64                  `json:"max_change"`
	Fit              rasch.FitStatistics      `json:"fit"`
	Scoring          scoring.Metadata         `json:"scoring"`
	Group            scoring.GroupStatistics  `json:"group_statistics"`
	Reliabilities    map[string]*float64      `json:"reliabilities"`
	Overview         model.ClusterOverview    `json:"clusters"`
	Silhouette       *float64                 `json:"silhouette,omitempty"`
	CalinskiHarabasz *float64                 `json:"calinski_harabasz,omitempty"`
	Selection        *clustering.Selection    `json:"selection,omitempty"`
	Warnings         []model.Warning          `json:"warnings"`
}

// NewSummary digests a pipeline result.
func NewSummary(res *pipeline.Result, source, fingerprint string) Summary {
	s := Summary{
		RunID:       res.RunID,
		Source:      source,
		Fingerprint: fingerprint,
		StartedAt:   res.StartedAt.UTC(),
		DurationMS:  res.Duration.Milliseconds(),
		Settings:    res.Settings,
		Persons:     res.Persons,
		Items:       res.Items,
		Rasch:       res.Summary,
		Fit:         res.Fit,
		Overview:    res.Overview,
		Warnings:    res.Warnings,
	}
	if s.Warnings == nil {
		s.Warnings = []model.Warning{}
	}
	if res.Rasch != nil {
		s.MaxChange = res.Rasch.MaxChange
	}
	if res.Scoring != nil {
		s.Scoring = res.Scoring.Metadata
		s.Group = res.Scoring.Group
		s.Reliabilities = res.Scoring.Reliabilities
	}
	if res.Clustering != nil {
		s.Silhouette = res.Clustering.Silhouette
		s.CalinskiHarabasz = res.Clustering.CalinskiHarabasz
		s.Selection = res.Clustering.Selection
	}
	return s
}
