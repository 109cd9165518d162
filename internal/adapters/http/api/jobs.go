package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const maxBodyBytes = 1 << 16

type submitRequest struct {
	Path string `json:"path"`
}

type submitResponse struct {
	JobID       string    `json:"job_id"`
	Fingerprint string    `json:"fingerprint"`
	SubmittedAt time.Time `json:"submitted_at"`
	Duplicate   bool      `json:"duplicate"`
}

// JobsHandler accepts batch job submissions.
type JobsHandler struct {
	deps Dependencies
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps Dependencies) *JobsHandler {
	return &JobsHandler{deps: deps}
}

// HandleSubmit handles POST /jobs with a JSON body {"path": "..."}.
// Returns 202 for a queued job and 200 for an input already processed.
func (h *JobsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Wrap(ErrBadRequest, "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Wrap(ErrBadRequest, "missing path"))
		return
	}

	res, err := h.deps.Submit(r.Context(), req.Path)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	status := http.StatusAccepted
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, submitResponse{
		JobID:       res.Job.ID,
		Fingerprint: res.Job.Fingerprint,
		SubmittedAt: res.Job.SubmittedAt,
		Duplicate:   res.Duplicate,
	})
}
