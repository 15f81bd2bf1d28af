package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jask/frontfrend/internal/prefs"
)

const (
	pathStart   = "/api/workflow/start"
	pathStatus  = "/api/workflow/status"
	pathResults = "/api/workflow/results"
	pathPreview = "/api/live_preview"

	// maxErrorBody bounds how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
}

// JobError is returned when the backend reports the workflow failed.
type JobError struct {
	Message string
}

func (e *JobError) Error() string {
	if e.Message == "" {
		return "workflow failed"
	}
	return "workflow failed: " + e.Message
}

// ErrUnknownStatus is wrapped when the status endpoint reports an unexpected state.
var ErrUnknownStatus = errors.New("unknown workflow status")

// Client talks to the workflow backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
}

// NewClient returns a client for base, using http.DefaultClient when hc is nil.
func NewClient(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(base, "/"), HTTP: hc}
}

// Start kicks off an analysis job for repoURL.
func (c *Client) Start(ctx context.Context, repoURL string, p prefs.Preferences) error {
	if p.Improvements == nil {
		p.Improvements = []string{}
	}
	body := StartRequest{RepoURL: repoURL, UserPreferences: p}
	return c.do(ctx, "start", http.MethodPost, pathStart, body, nil)
}

// Status fetches the current job state.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var out StatusResponse
	if err := c.do(ctx, "status", http.MethodGet, pathStatus, nil, &out); err != nil {
		return StatusResponse{}, err
	}
	if !out.Status.valid() {
		return StatusResponse{}, fmt.Errorf("status: %w %q", ErrUnknownStatus, out.Status)
	}
	return out, nil
}

// Results fetches the improvements and changed files of a completed job.
func (c *Client) Results(ctx context.Context) (Results, error) {
	var out Results
	if err := c.do(ctx, "results", http.MethodGet, pathResults, nil, &out); err != nil {
		return Results{}, err
	}
	return out, nil
}

// LivePreview fetches the rendered HTML preview document.
func (c *Client) LivePreview(ctx context.Context) (string, error) {
	resp, err := c.send(ctx, "live preview", http.MethodGet, pathPreview, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("live preview: read body: %w", err)
	}
	return string(data), nil
}

// Outcome is everything a completed job produced.
type Outcome struct {
	Results    Results
	Preview    string
	PreviewErr error
}

// Collect fetches the results and the live preview concurrently. A preview
// failure is kept in PreviewErr and does not fail the call.
func (c *Client) Collect(ctx context.Context) (Outcome, error) {
	var out Outcome
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Results, err = c.Results(gctx)
		return err
	})
	g.Go(func() error {
		out.Preview, out.PreviewErr = c.LivePreview(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = buf
	}
	resp, err := c.send(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, op, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(resp)}
	}
	return resp, nil
}

// errorMessage prefers a JSON message/error field over the bare HTTP status.
func errorMessage(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return http.StatusText(resp.StatusCode)
}
