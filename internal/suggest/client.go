package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// SuggestPath is the route suggestions are requested from.
const SuggestPath = "/api/ai/suggest-jobs"

// Outcome is the result of one suggestion request. Err is reported once;
// when Fallback is true Jobs holds DefaultJobs.
type Outcome struct {
	Jobs     []Job
	Fallback bool
	Err      error
}

// Source produces suggestions for a query, calling onUpdate with every
// intermediate job list. The returned error is reserved for invalid input;
// request failures are carried in the Outcome.
type Source interface {
	Suggest(ctx context.Context, query string, onUpdate func([]Job)) (Outcome, error)
}

// StatusError reports a non-success HTTP response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// ReadStatusError builds a StatusError from a non-success response,
// consuming at most 64KiB of its body.
func ReadStatusError(resp *http.Response) *StatusError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &StatusError{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.Status, raw),
	}
}

// Client fetches suggestions from a remote skill-tree API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewClient creates a suggestion client for baseURL. A nil httpClient
// means a client with a generous overall timeout.
func NewClient(baseURL string, httpClient *http.Client, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// Suggest streams suggestions for query. Blank queries fail with
// ErrEmptyQuery before any request is made.
func (c *Client) Suggest(ctx context.Context, query string, onUpdate func([]Job)) (Outcome, error) {
	if strings.TrimSpace(query) == "" {
		return Outcome{}, ErrEmptyQuery
	}

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SuggestPath, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return fallback(err, onUpdate), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fallback(ReadStatusError(resp), onUpdate), nil
	}

	return consumeOutcome(ctx, resp.Body, c.logger, onUpdate), nil
}

// consumeOutcome runs the consumer over r and applies the fallback rules:
// a failure before any byte arrived, or without any valid envelope, falls
// back to DefaultJobs; otherwise the last valid envelope is kept.
func consumeOutcome(ctx context.Context, r io.Reader, logger *log.Logger, onUpdate func([]Job)) Outcome {
	c := &Consumer{Logger: logger}
	if onUpdate != nil {
		c.OnUpdate = func(env Envelope) { onUpdate(env.Jobs) }
	}

	last, n, err := c.Consume(ctx, r)
	switch {
	case err == nil && last == nil:
		return Outcome{Jobs: []Job{}}
	case err == nil:
		return Outcome{Jobs: last.Jobs}
	case n == 0 || last == nil:
		return fallback(err, onUpdate)
	default:
		if logger != nil {
			logger.Warn("suggestion stream interrupted", "err", err, "jobs", len(last.Jobs))
		}
		return Outcome{Jobs: last.Jobs, Err: err}
	}
}

func fallback(err error, onUpdate func([]Job)) Outcome {
	jobs := DefaultJobs()
	if onUpdate != nil {
		onUpdate(jobs)
	}
	return Outcome{Jobs: jobs, Fallback: true, Err: err}
}

// errorMessage derives a user-facing message from an error response body:
// a JSON "error" or "message" string, else the trimmed text, else the
// status line.
func errorMessage(status string, body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, raw := range []json.RawMessage{payload.Error, payload.Message} {
			var s string
			if json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return status
}
