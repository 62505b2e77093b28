package suggestions

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/router"
	"github.com/mezotv/skill-tree/internal/screen"
	"github.com/mezotv/skill-tree/internal/session"
	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/suggest"
)

type stubSuggest struct {
	out suggest.Outcome
}

func (s stubSuggest) Suggest(_ context.Context, _ string, onUpdate func([]suggest.Job)) (suggest.Outcome, error) {
	if onUpdate != nil && len(s.out.Jobs) > 0 {
		onUpdate(s.out.Jobs)
	}
	return s.out, nil
}

type noTree struct{}

func (noTree) Fetch(context.Context, string) (skillgraph.Graph, error) {
	return skillgraph.Graph{}, errors.New("not used")
}

func newScreen(out suggest.Outcome) (*session.Runner, *SuggestionsScreen) {
	r := session.NewRunner(context.Background(), session.NewController(layout.DefaultConfig(), nil), stubSuggest{out: out}, noTree{})
	return r, New(r)
}

func TestStartPublishesJobs(t *testing.T) {
	jobs := []suggest.Job{{Title: "Pastry Chef", Relevance: "Bakes cakes"}, {Title: "Food Scientist", Relevance: "Invents recipes"}}
	r, s := newScreen(suggest.Outcome{Jobs: jobs})

	if msg := Start(r, "cakes")(); msg != nil {
		t.Fatalf("unexpected message %#v", msg)
	}
	view := s.View(100, 30)
	for _, want := range []string{"Careers for “cakes”", "Pastry Chef", "Bakes cakes", "Food Scientist"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "popular careers") {
		t.Error("no fallback notice expected")
	}
}

func TestStartEmptyQueryReportsError(t *testing.T) {
	r, s := newScreen(suggest.Outcome{})
	msg := Start(r, "  ")()
	errMsg, ok := msg.(screen.ErrMsg)
	if !ok || !errors.Is(errMsg.Err, suggest.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %#v", msg)
	}
	s.Update(errMsg)
	if !strings.Contains(s.View(100, 30), "Could not start the search") {
		t.Error("expected error notice")
	}
}

func TestFallbackNotice(t *testing.T) {
	r, s := newScreen(suggest.Outcome{
		Jobs:     suggest.DefaultJobs(),
		Fallback: true,
		Err:      &suggest.StatusError{StatusCode: 503, Message: "overloaded"},
	})
	Start(r, "space")()

	view := s.View(120, 30)
	if !strings.Contains(view, "popular careers") || !strings.Contains(view, "overloaded") {
		t.Errorf("expected fallback notice, got:\n%s", view)
	}
	if !strings.Contains(view, suggest.DefaultJobs()[0].Title) {
		t.Error("expected default jobs listed")
	}
}

func TestEnterOpensSkillMap(t *testing.T) {
	jobs := []suggest.Job{{Title: "Pilot", Relevance: "Flies"}, {Title: "Astronaut", Relevance: "Space"}}
	r, s := newScreen(suggest.Outcome{Jobs: jobs})
	Start(r, "sky")()
	s.Update(screen.StateMsg{State: r.State()})

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.cursor != 1 {
		t.Fatalf("expected cursor clamped at 1, got %d", s.cursor)
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
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
		t.Error("expected the skill map to be pushed")
	}
	if r.State().Selected != "Astronaut" {
		t.Errorf("expected Astronaut selected, got %q", r.State().Selected)
	}
	if r.State().TreeErr == nil {
		t.Error("expected the stub tree error to be recorded")
	}
}
