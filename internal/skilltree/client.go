package skilltree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/suggest"
)

// JobPath is the route skill trees are requested from.
const JobPath = "/api/ai/job"

// Client fetches skill trees from a remote skill-tree API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a skill-tree client for baseURL. Generation can take
// minutes, so a nil httpClient gets a long timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Fetch requests the tree for occupation. There is no fallback: any
// failure is returned as "failed to load skill tree".
func (c *Client) Fetch(ctx context.Context, occupation string) (skillgraph.Graph, error) {
	occupation = strings.TrimSpace(occupation)
	if occupation == "" {
		return skillgraph.Graph{}, ErrEmptyOccupation
	}

	body, err := json.Marshal(map[string]string{"job": occupation})
	if err != nil {
		return skillgraph.Graph{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+JobPath, bytes.NewReader(body))
	if err != nil {
		return skillgraph.Graph{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return skillgraph.Graph{}, fmt.Errorf("failed to load skill tree: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return skillgraph.Graph{}, fmt.Errorf("failed to load skill tree: %w", suggest.ReadStatusError(resp))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return skillgraph.Graph{}, fmt.Errorf("failed to load skill tree: %w", err)
	}
	g, err := skillgraph.Decode(data)
	if err != nil {
		return skillgraph.Graph{}, fmt.Errorf("failed to load skill tree: %w", err)
	}
	g = skillgraph.Normalize(g, occupation)
	if err := skillgraph.Validate(g); err != nil {
		return skillgraph.Graph{}, fmt.Errorf("failed to load skill tree: %w", err)
	}
	return g, nil
}
