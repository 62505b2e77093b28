package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezotv/skill-tree/internal/llm"
)

func collect(t *testing.T, s *Service, query string) ([]Envelope, error) {
	t.Helper()
	var envs []Envelope
	err := s.Stream(context.Background(), query, func(env Envelope) error {
		envs = append(envs, env)
		return nil
	})
	return envs, err
}

func TestService_StreamsLineDelimitedJobs(t *testing.T) {
	text := `{"title":"Dog Walker","relevance":"Walks dogs"}` + "\n" +
		"not a job\n" +
		`{"title":"Veterinarian","relevance":"Heals animals"}` + "\n" +
		`{"title":"dog walker","relevance":"duplicate"}` + "\n" +
		`{"title":"Zoo Keeper","relevance":"Feeds animals"}`
	// Split at awkward places, including inside JSON strings.
	chunks := []string{text[:7], text[7:50], text[50:51], text[51:120], text[120:]}
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: chunks})

	s := NewService(mock, DefaultConfig(), nil)
	envs, err := collect(t, s, "  dogs  ")
	require.NoError(t, err)

	require.Len(t, envs, 3)
	assert.Equal(t, []string{"Dog Walker"}, envs[0].Titles())
	assert.Equal(t, []string{"Dog Walker", "Veterinarian"}, envs[1].Titles())
	assert.Equal(t, []string{"Dog Walker", "Veterinarian", "Zoo Keeper"}, envs[2].Titles())

	require.Equal(t, 1, mock.CallCount())
	assert.Nil(t, mock.Calls[0].Schema)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, `"dogs"`)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "exactly 5 lines")
}

func TestService_StreamStopsAtCount(t *testing.T) {
	var b strings.Builder
	for _, title := range []string{"A", "B", "C", "D"} {
		b.WriteString(`{"title":"` + title + `","relevance":"r"},` + "\n")
	}
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: []string{"```json\n[\n", b.String(), "]\n```"}})

	cfg := DefaultConfig()
	cfg.Count = 2
	envs, err := collect(t, NewService(mock, cfg, nil), "letters")
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, []string{"A", "B"}, envs[1].Titles())
}

func TestService_StreamWholeDocumentFallback(t *testing.T) {
	doc := "```json\n" +
		`{"jobs":[{"title":"Pilot","relevance":"Flies planes"},{"title":"Astronaut","relevance":"Goes to space"}]}` +
		"\n```"
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(doc)})

	envs, err := collect(t, NewService(mock, DefaultConfig(), nil), "sky")
	require.NoError(t, err)
	require.Len(t, envs, 2)
	assert.Equal(t, []string{"Pilot", "Astronaut"}, envs[1].Titles())
}

func TestService_StreamNothingUsable(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: []string{"Sorry, I can't help.\n"}})

	_, err := collect(t, NewService(mock, DefaultConfig(), nil), "sky")
	assert.ErrorIs(t, err, ErrNoSuggestions)
}

func TestService_GenerateWhenStreamingUnsupported(t *testing.T) {
	content := `{"jobs":[{"title":"Chef","relevance":"Cooks"},{"title":"Baker","relevance":"Bakes"},{"title":"Farmer","relevance":"Grows food"},{"title":"Waiter","relevance":"Serves"},{"title":"Grocer","relevance":"Sells food"}]}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(content)})

	s := NewService(llm.GenerateOnly(mock), DefaultConfig(), nil)
	envs, err := collect(t, s, "food")
	require.NoError(t, err)
	require.Len(t, envs, 5)
	for i, env := range envs {
		assert.Len(t, env.Jobs, i+1)
	}
	require.Equal(t, 1, mock.CallCount())
	require.NotNil(t, mock.Calls[0].Schema)
	assert.Equal(t, "job-suggestions-5", mock.Calls[0].Schema.Name)
}

func TestService_GenerateRejectsWrongCount(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"jobs":[{"title":"Chef","relevance":"Cooks"}]}`)})

	cfg := DefaultConfig()
	cfg.Stream = false
	_, err := collect(t, NewService(mock, cfg, nil), "food")
	var inv *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestService_ProviderError(t *testing.T) {
	boom := &llm.ErrProviderUnavailable{Err: errors.New("down")}
	mock := llm.NewMockProvider(llm.MockResponse{Err: boom})

	_, err := collect(t, NewService(mock, DefaultConfig(), nil), "food")
	var unavail *llm.ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}

func TestService_EmitErrorAborts(t *testing.T) {
	stop := errors.New("client gone")
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: []string{
		`{"title":"A","relevance":"a"}` + "\n",
		`{"title":"B","relevance":"b"}` + "\n",
	}})

	calls := 0
	err := NewService(mock, DefaultConfig(), nil).Stream(context.Background(), "x", func(Envelope) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestService_EmptyQuery(t *testing.T) {
	mock := llm.NewMockProvider()
	_, err := collect(t, NewService(mock, DefaultConfig(), nil), " ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, mock.CallCount())
}

func TestLocalSource_EndToEnd(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Chunks: []string{
		`{"title":"Painter","relevance":"Makes art"}` + "\n" + `{"title":"Sculp`,
		`tor","relevance":"Shapes clay"}` + "\n",
	}})
	src := NewLocalSource(NewService(mock, DefaultConfig(), nil), nil)

	var updates [][]Job
	out, err := src.Suggest(context.Background(), "art", func(jobs []Job) {
		updates = append(updates, jobs)
	})
	require.NoError(t, err)
	assert.NoError(t, out.Err)
	assert.False(t, out.Fallback)
	assert.Len(t, updates, 2)
	assert.Equal(t, []string{"Painter", "Sculptor"}, Envelope{Jobs: out.Jobs}.Titles())
}

func TestLocalSource_FailureFallsBack(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	src := NewLocalSource(NewService(mock, DefaultConfig(), nil), nil)

	out, err := src.Suggest(context.Background(), "art", nil)
	require.NoError(t, err)
	assert.True(t, out.Fallback)
	assert.Equal(t, DefaultJobs(), out.Jobs)
	var rl *llm.ErrRateLimit
	assert.ErrorAs(t, out.Err, &rl)
}

func TestLocalSource_EmptyQuery(t *testing.T) {
	src := NewLocalSource(NewService(llm.NewMockProvider(), DefaultConfig(), nil), nil)
	_, err := src.Suggest(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, Envelope{Jobs: []Job{{Title: "Vet", Relevance: "Pets"}}}))
	assert.Equal(t, "data: {\"jobs\":[{\"title\":\"Vet\",\"relevance\":\"Pets\"}]}\n\n", buf.String())

	res := ParseLine(strings.TrimSuffix(buf.String(), "\n\n"))
	assert.Equal(t, LineParsed, res.Kind)
}
