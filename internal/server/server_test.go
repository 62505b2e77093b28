package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/llm"
	"github.com/mezotv/skill-tree/internal/metrics"
	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/skilltree"
	"github.com/mezotv/skill-tree/internal/suggest"
)

const treeBody = `{
	"occupation": "Nurse",
	"subjects": ["Math"],
	"ages": [5, 6],
	"schools": ["Elementary", "Middle School", "High School"],
	"skills": [
		{"id": "math-5-1", "subject": "Math", "age": 5, "school": "Elementary", "level": 1,
		 "completed": false, "description": "Counting to twenty",
		 "explanation": "Nurses count pulses and medicine doses.", "prerequisites": []},
		{"id": "math-6-1", "subject": "Math", "age": 6, "school": "Elementary", "level": 2,
		 "completed": false, "description": "Simple measuring",
		 "explanation": "Measuring fluids is part of patient care.", "prerequisites": []}
	]
}`

type fixture struct {
	server  *httptest.Server
	mock    *llm.MockProvider
	metrics *metrics.Collector
}

func newFixture(t *testing.T, responses ...llm.MockResponse) *fixture {
	t.Helper()
	mock := llm.NewMockProvider(responses...)
	col := metrics.NewCollector("test")
	srv := New(DefaultConfig(), Deps{
		Suggest: suggest.NewService(mock, suggest.DefaultConfig(), nil),
		Trees:   skilltree.NewService(mock, skilltree.DefaultConfig(), nil, nil),
		Layout:  layout.DefaultConfig(),
		Metrics: col,
		Model:   mock.ModelID(),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{server: ts, mock: mock, metrics: col}
}

func (f *fixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "mock", body["model"])
}

func TestSuggestJobs_Streams(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Chunks: []string{
		`{"title":"Vet","relevance":"Heals pets"}` + "\n" + `{"title":"Zoo`,
		` Keeper","relevance":"Feeds animals"}` + "\n",
	}})

	resp := f.post(t, suggest.SuggestPath, `{"query":"animals"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var lines []string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if sc.Text() != "" {
			lines = append(lines, sc.Text())
		}
	}
	require.Len(t, lines, 2)
	res := suggest.ParseLine(lines[1])
	require.Equal(t, suggest.LineParsed, res.Kind)
	assert.Equal(t, []string{"Vet", "Zoo Keeper"}, res.Envelope.Titles())
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.EnvelopesStreamed))
}

func TestSuggestJobs_ClientRoundTrip(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Chunks: []string{
		`{"title":"Pilot","relevance":"Flies planes"}` + "\n",
	}})

	out, err := suggest.NewClient(f.server.URL, nil, nil).Suggest(context.Background(), "sky", nil)
	require.NoError(t, err)
	assert.False(t, out.Fallback)
	assert.Equal(t, []suggest.Job{{Title: "Pilot", Relevance: "Flies planes"}}, out.Jobs)
}

func TestSuggestJobs_BlankQuery(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{`{"query":"  "}`, `{}`, `not json`} {
		resp := f.post(t, suggest.SuggestPath, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Query is required", decodeError(t, resp).Error)
	}
	assert.Zero(t, f.mock.CallCount())
}

func TestSuggestJobs_FailureBeforeFirstEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unavailable", &llm.ErrProviderUnavailable{Err: errors.New("down")}, http.StatusBadGateway},
		{"circuit open", &llm.ErrProviderUnavailable{Open: true, Err: errors.New("open")}, http.StatusServiceUnavailable},
		{"rate limited", &llm.ErrRateLimit{Err: errors.New("429")}, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, llm.MockResponse{Err: tt.err})
			resp := f.post(t, suggest.SuggestPath, `{"query":"animals"}`)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		})
	}
}

func TestSuggestJobs_NothingUsable(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Chunks: []string{"no idea\n"}})
	resp := f.post(t, suggest.SuggestPath, `{"query":"animals"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, suggest.ErrNoSuggestions.Error(), decodeError(t, resp).Error)
}

func TestJob_Generates(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Content: json.RawMessage(treeBody)})

	resp := f.post(t, skilltree.JobPath, `{"job":"Nurse"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var g skillgraph.Graph
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&g))
	assert.Equal(t, "Nurse", g.Occupation)
	assert.Len(t, g.Skills, 2)
}

func TestJob_ClientRoundTrip(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Content: json.RawMessage(treeBody)})

	g, err := skilltree.NewClient(f.server.URL, nil).Fetch(context.Background(), "Nurse")
	require.NoError(t, err)
	assert.Len(t, g.Skills, 2)
}

func TestJob_BadBody(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		body string
		msg  string
	}{
		{`{"job":""}`, "job is required"},
		{`{"job":"` + strings.Repeat("x", 101) + `"}`, "job must be at most 100 characters"},
		{`{"job":`, ""},
	}
	for _, tt := range tests {
		resp := f.post(t, skilltree.JobPath, tt.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "Invalid request body", body.Error)
		if tt.msg != "" {
			assert.Equal(t, tt.msg, body.Message)
		}
	}
	assert.Zero(t, f.mock.CallCount())
}

func TestJob_ProviderFailure(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Err: &llm.ErrProviderUnavailable{Open: true}})
	resp := f.post(t, skilltree.JobPath, `{"job":"Nurse"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	_, err := skilltree.NewClient(f.server.URL, nil).Fetch(context.Background(), "Nurse")
	assert.ErrorContains(t, err, "failed to load skill tree")
}

func TestLayout(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "/api/layout?root=false&ages=false", treeBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res layout.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))

	_, hasRoot := res.Node(layout.RootID)
	assert.False(t, hasRoot)
	assert.Empty(t, res.EdgesOf(layout.EdgeRoot))
	assert.Len(t, res.Skills(), 2)
	assert.Len(t, res.EdgesOf(layout.EdgeChain), 1)
}

func TestLayout_Invalid(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "/api/layout?root=maybe", treeBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad := strings.Replace(treeBody, `"age": 5`, `"age": 30`, 1)
	resp = f.post(t, "/api/layout", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid skill graph", decodeError(t, resp).Error)
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t)
	_, err := http.Get(f.server.URL + "/health")
	require.NoError(t, err)

	resp, err := http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	req, _ := http.NewRequest(http.MethodOptions, f.server.URL+skilltree.JobPath, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(DefaultConfig(), Deps{}).Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
