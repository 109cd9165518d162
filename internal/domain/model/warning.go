package model

import "time"

// Warning codes surfaced by pipeline stages.
const (
	WarnDuplicateResponse = "duplicate_response"
	WarnOutOfScale        = "out_of_scale"
	WarnUnmappedItems     = "unmapped_items"
	WarnNoMappedItems     = "no_mapped_items"
	WarnLowCompletion     = "low_completion"
	WarnSparseConstruct   = "sparse_construct"
	WarnNotConverged      = "not_converged"
	WarnFeaturePadding    = "feature_padding"
	WarnClustersReduced   = "clusters_reduced"
	WarnSelectionFallback = "selection_fallback"
	WarnUnparseableRow    = "unparseable_row"
)

// Warning is a non-fatal data-quality finding.
type Warning struct {
	Stage    string `json:"stage"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	PersonID string `json:"person_id,omitempty"`
}

// Job is one batch pipeline request handled by the worker pool.
type Job struct {
	ID          string
	Path        string
	Fingerprint string
	SubmittedAt time.Time
}
