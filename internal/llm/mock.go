package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MockResponse is a canned response for the MockProvider. Chunks, when
// set, are the deltas a Stream call delivers; Content is then ignored for
// streams.
type MockResponse struct {
	Content json.RawMessage
	Chunks  []string
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// next pops the next canned response, recording req.
func (m *MockProvider) next(req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return MockResponse{}, false
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, true
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty. Schema validation runs as it would for a real
// provider.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	resp, ok := m.next(req)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// Stream delivers the next canned response as deltas.
func (m *MockProvider) Stream(ctx context.Context, req Request, onDelta func(string) error) (*Response, error) {
	resp, ok := m.next(req)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}

	chunks := resp.Chunks
	if chunks == nil {
		chunks = []string{string(resp.Content)}
	}
	var full strings.Builder
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		full.WriteString(c)
		if err := onDelta(c); err != nil {
			return nil, err
		}
	}

	return &Response{
		Content:    json.RawMessage(full.String()),
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate and Stream calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// GenerateOnly hides any Stream method of p, for exercising the
// non-streaming path of callers.
func GenerateOnly(p Provider) Provider {
	return generateOnly{p}
}

type generateOnly struct {
	p Provider
}

func (g generateOnly) Generate(ctx context.Context, req Request) (*Response, error) {
	return g.p.Generate(ctx, req)
}

func (g generateOnly) ModelID() string { return g.p.ModelID() }
