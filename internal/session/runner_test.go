package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/suggest"
)

// blockingSuggest waits for cancellation on the first call and answers
// immediately afterwards.
type blockingSuggest struct {
	started  chan struct{}
	canceled chan error
	calls    int
}

func (b *blockingSuggest) Suggest(ctx context.Context, query string, _ func([]suggest.Job)) (suggest.Outcome, error) {
	b.calls++
	if b.calls == 1 {
		close(b.started)
		<-ctx.Done()
		b.canceled <- ctx.Err()
		return suggest.Outcome{Err: ctx.Err()}, nil
	}
	return suggest.Outcome{Jobs: []suggest.Job{{Title: query}}}, nil
}

func TestRunner_NewRequestCancelsPrevious(t *testing.T) {
	src := &blockingSuggest{started: make(chan struct{}), canceled: make(chan error, 1)}
	r := NewRunner(context.Background(), NewController(layout.DefaultConfig(), nil), src, stubTree{})

	done := make(chan error, 1)
	go func() { done <- r.Suggest("cats") }()
	<-src.started

	require.NoError(t, r.Suggest("dogs"))

	select {
	case err := <-src.canceled:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("first request was not canceled")
	}
	require.NoError(t, <-done)

	s := r.State()
	assert.Equal(t, "dogs", s.Query)
	assert.Equal(t, []suggest.Job{{Title: "dogs"}}, s.Jobs)
	assert.NoError(t, s.SuggestErr)
}

func TestRunner_LoadTree(t *testing.T) {
	r := NewRunner(context.Background(), NewController(layout.DefaultConfig(), nil), stubSuggest{}, stubTree{g: testGraph()})
	defer r.Close()

	require.NoError(t, r.LoadTree("Engineer"))
	s := r.State()
	require.NotNil(t, s.Layout)
	assert.Equal(t, "Engineer", s.Selected)
	assert.Same(t, r.Controller(), r.ctrl)

	_, ok := s.Layout.Node("m5")
	assert.True(t, ok)
	assert.Len(t, s.Graph.Skills, len(testGraph().Skills))
	assert.Equal(t, skillgraph.TierElementary, s.Graph.Skills[0].School)
}
