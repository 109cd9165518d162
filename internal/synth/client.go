package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// SubmitResponse is the answer of POST /jobs.
type SubmitResponse struct {
	JobID       string    `json:"job_id"`
	Fingerprint string    `json:"fingerprint"`
	SubmittedAt time.Time `json:"submitted_at"`
	Duplicate   bool      `json:"duplicate"`
}

// Client submits generated files to a victoria server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Submit asks the server to queue the file at path. The path must be readable by the server.
func (c *Client) Submit(ctx context.Context, path string) (SubmitResponse, error) {
	body, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return SubmitResponse{}, errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return SubmitResponse{}, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return SubmitResponse{}, errors.Mark(errors.Wrap(err, "post /jobs"), ErrSubmit)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return SubmitResponse{}, errors.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return SubmitResponse{}, errors.Mark(
			errors.Newf("post /jobs: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))),
			ErrSubmit,
		)
	}
	var out SubmitResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return SubmitResponse{}, errors.Wrap(err, "decode response")
	}
	return out, nil
}
