package home

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/router"
	"github.com/mezotv/skill-tree/internal/session"
	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/suggest"
)

type stubSuggest struct{}

func (stubSuggest) Suggest(_ context.Context, q string, _ func([]suggest.Job)) (suggest.Outcome, error) {
	return suggest.Outcome{Jobs: []suggest.Job{{Title: "Musician", Relevance: q}}}, nil
}

type stubTree struct{}

func (stubTree) Fetch(context.Context, string) (skillgraph.Graph, error) {
	return skillgraph.Graph{}, nil
}

func newHome() (*session.Runner, *HomeScreen) {
	r := session.NewRunner(context.Background(), session.NewController(layout.DefaultConfig(), nil), stubSuggest{}, stubTree{})
	return r, New(r)
}

func TestEnterWithoutInputShowsNotice(t *testing.T) {
	r, h := newHome()

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command for blank input")
	}
	if !strings.Contains(h.View(100, 30), "Tell me something you enjoy first.") {
		t.Error("expected notice")
	}
	if r.State().SuggestGen != 0 {
		t.Error("no request should start")
	}
}

func TestEnterStartsSuggestions(t *testing.T) {
	r, h := newHome()
	h.input.Model.SetValue("  music ")

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}

	var pushed bool
	for _, c := range cmd().(tea.BatchMsg) {
		if _, ok := c().(router.PushScreenMsg); ok {
			pushed = true
		}
	}
	if !pushed {
		t.Error("expected the suggestion list to be pushed")
	}
	st := r.State()
	if st.Query != "music" || len(st.Jobs) != 1 {
		t.Errorf("unexpected state: query %q, %d jobs", st.Query, len(st.Jobs))
	}
}

func TestRenderBannerCompact(t *testing.T) {
	if !strings.Contains(RenderBanner(40), bannerCompact) {
		t.Error("expected compact banner on narrow terminals")
	}
	if strings.Contains(RenderBanner(120), bannerCompact) {
		t.Error("expected full banner on wide terminals")
	}
}
