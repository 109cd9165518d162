package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/adapters/http/api"
	"github.com/okian/victoria/internal/adapters/repository"
	"github.com/okian/victoria/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	ready     bool
	submitErr error
	duplicate bool
	submitted []string
	runs      map[string]repository.Run
	lastLimit int
}

func (m *mockDeps) Submit(_ context.Context, path string) (api.SubmitResult, error) {
	if m.submitErr != nil {
		return api.SubmitResult{}, m.submitErr
	}
	m.submitted = append(m.submitted, path)
	return api.SubmitResult{
		Job: model.Job{
			ID:          "job-1",
			Path:        path,
			Fingerprint: "abc",
			SubmittedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		Duplicate: m.duplicate,
	}, nil
}

func (m *mockDeps) ListRuns(_ context.Context, limit int) ([]repository.Run, error) {
	m.lastLimit = limit
	if limit < 1 || limit > 100 {
		return nil, repository.ErrInvalidLimit
	}
	out := make([]repository.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockDeps) GetRun(_ context.Context, id string) (repository.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return repository.Run{}, errors.Wrapf(repository.ErrNotFound, "%s", id)
	}
	return r, nil
}

func (m *mockDeps) Ready() bool { return m.ready }

type mockStats struct{}

func (mockStats) GetStats() map[string]any {
	return map[string]any{"started": true, "queueLength": 3}
}

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}).Register(mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestHealthEndpoints(t *testing.T) {
	Convey("Given a server whose service is not ready", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("Then /healthz is ok and /readyz is unavailable", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["status"], ShouldEqual, "ok")

			w = do(mux, http.MethodGet, "/readyz", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When it becomes ready", func() {
			deps.ready = true
			w := do(mux, http.MethodGet, "/readyz", "")

			Convey("Then /readyz is ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["status"], ShouldEqual, "ready")
			})
		})

		Convey("Then /metrics serves the exposition format", func() {
			do(mux, http.MethodGet, "/healthz", "")
			w := do(mux, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "victoria_pipeline_http_requests_total")
		})

		Convey("Then /stats returns the provider snapshot", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["queueLength"], ShouldEqual, float64(3))
		})
	})
}

func TestRunsEndpoints(t *testing.T) {
	Convey("Given a server with one stored run", t, func() {
		deps := &mockDeps{runs: map[string]repository.Run{
			"r1": {ID: "r1", Source: "a.csv", Persons: 8, Items: 6, Summary: json.RawMessage(`{"run_id":"r1"}`)},
		}}
		mux := newMux(deps)

		Convey("When listing without a limit", func() {
			w := do(mux, http.MethodGet, "/runs", "")

			Convey("Then the default limit is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastLimit, ShouldEqual, 20)
				So(decode(w)["count"], ShouldEqual, float64(1))
			})
		})

		Convey("When the limit is not a number", func() {
			w := do(mux, http.MethodGet, "/runs?limit=abc", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the limit is out of range", func() {
			w := do(mux, http.MethodGet, "/runs?limit=1000", "")

			Convey("Then the store error maps to 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When fetching a known run", func() {
			w := do(mux, http.MethodGet, "/runs/r1", "")

			Convey("Then it is returned with its summary", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["id"], ShouldEqual, "r1")
				So(body["summary"], ShouldResemble, map[string]any{"run_id": "r1"})
			})
		})

		Convey("When fetching an unknown run", func() {
			w := do(mux, http.MethodGet, "/runs/zzz", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode(w)["code"], ShouldEqual, "not_found")
			})
		})
	})
}

func TestJobsEndpoint(t *testing.T) {
	Convey("Given a server accepting jobs", t, func() {
		deps := &mockDeps{ready: true}
		mux := newMux(deps)

		Convey("When a path is submitted", func() {
			w := do(mux, http.MethodPost, "/jobs", `{"path":"data/responses.csv"}`)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.submitted, ShouldResemble, []string{"data/responses.csv"})
				body := decode(w)
				So(body["job_id"], ShouldEqual, "job-1")
				So(body["duplicate"], ShouldEqual, false)
			})
		})

		Convey("When the input was already processed", func() {
			deps.duplicate = true
			w := do(mux, http.MethodPost, "/jobs", `{"path":"data/responses.csv"}`)

			Convey("Then it answers 200 with duplicate set", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["duplicate"], ShouldEqual, true)
			})
		})

		Convey("When the body is malformed", func() {
			for _, body := range []string{"", "{", `{"path":""}`, `{"path":"x","extra":1}`} {
				w := do(mux, http.MethodPost, "/jobs", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
			So(deps.submitted, ShouldBeEmpty)
		})

		Convey("When the queue is full", func() {
			deps.submitErr = errors.Mark(errors.New("queue full"), api.ErrBackpressure)
			w := do(mux, http.MethodPost, "/jobs", `{"path":"a.csv"}`)

			Convey("Then it answers 429", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decode(w)["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When submission fails unexpectedly", func() {
			deps.submitErr = errors.New("boom")
			w := do(mux, http.MethodPost, "/jobs", `{"path":"a.csv"}`)

			Convey("Then it answers 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(strings.Contains(w.Body.String(), "boom"), ShouldBeTrue)
			})
		})

		Convey("When using the wrong method", func() {
			w := do(mux, http.MethodGet, "/jobs", "")

			Convey("Then the mux rejects it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}
