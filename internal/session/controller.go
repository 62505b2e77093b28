package session

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/skilltree"
	"github.com/mezotv/skill-tree/internal/suggest"
)

// Controller owns the session State. All methods are safe for concurrent
// use; updates are compare-and-swap replacements of the whole snapshot.
type Controller struct {
	state    atomic.Pointer[State]
	layout   layout.Config
	onChange func(State)
}

// NewController creates a controller with an empty state. onChange, when
// non-nil, is called with every published snapshot.
func NewController(cfg layout.Config, onChange func(State)) *Controller {
	c := &Controller{layout: cfg, onChange: onChange}
	c.state.Store(&State{})
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	return *c.state.Load()
}

// update applies fn to a copy of the current state and publishes it.
// fn returns false to leave the state unchanged.
func (c *Controller) update(fn func(*State) bool) bool {
	for {
		old := c.state.Load()
		next := *old
		if !fn(&next) {
			return false
		}
		if c.state.CompareAndSwap(old, &next) {
			if c.onChange != nil {
				c.onChange(next)
			}
			return true
		}
	}
}

// StartSuggest begins a suggestion request for query and returns its
// generation. Any pending tree is abandoned.
func (c *Controller) StartSuggest(query string) (uint64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, suggest.ErrEmptyQuery
	}
	var gen uint64
	c.update(func(s *State) bool {
		s.SuggestGen++
		gen = s.SuggestGen
		s.Query = query
		s.Jobs = nil
		s.Fallback = false
		s.SuggestErr = nil
		s.SuggestLoading = true

		s.TreeGen++
		clearTree(s)
		s.Selected = ""
		return true
	})
	return gen, nil
}

// UpdateSuggestions publishes an intermediate job list. It reports false
// when gen is stale or the request already finished.
func (c *Controller) UpdateSuggestions(gen uint64, jobs []suggest.Job) bool {
	jobs = slices.Clone(jobs)
	return c.update(func(s *State) bool {
		if gen != s.SuggestGen || !s.SuggestLoading {
			return false
		}
		s.Jobs = jobs
		return true
	})
}

// FinishSuggest records the final outcome of request gen.
func (c *Controller) FinishSuggest(gen uint64, out suggest.Outcome) bool {
	jobs := slices.Clone(out.Jobs)
	return c.update(func(s *State) bool {
		if gen != s.SuggestGen {
			return false
		}
		s.Jobs = jobs
		s.Fallback = out.Fallback
		s.SuggestErr = out.Err
		s.SuggestLoading = false
		return true
	})
}

// Select starts loading the tree for occupation and returns the request
// generation. The previous graph is cleared immediately.
func (c *Controller) Select(occupation string) (uint64, error) {
	occupation = strings.TrimSpace(occupation)
	if occupation == "" {
		return 0, skilltree.ErrEmptyOccupation
	}
	var gen uint64
	c.update(func(s *State) bool {
		s.TreeGen++
		gen = s.TreeGen
		clearTree(s)
		s.Selected = occupation
		s.TreeLoading = true
		return true
	})
	return gen, nil
}

// FinishTree records the result of tree request gen and lays it out.
func (c *Controller) FinishTree(gen uint64, g skillgraph.Graph, err error) bool {
	var res layout.Result
	if err == nil {
		res, err = layout.Compute(g, c.layout)
	}
	return c.update(func(s *State) bool {
		if gen != s.TreeGen {
			return false
		}
		s.TreeLoading = false
		if err != nil {
			s.TreeErr = err
			return true
		}
		s.Graph = &g
		s.Layout = &res
		return true
	})
}

// Focus shows the details of skill id. Unknown ids and non-skill nodes
// are ignored.
func (c *Controller) Focus(id string) bool {
	return c.update(func(s *State) bool {
		if s.Layout == nil {
			return false
		}
		n, ok := s.Layout.Node(id)
		if !ok || n.Kind != layout.KindSkill {
			return false
		}
		s.Focused = id
		return true
	})
}

// Unfocus closes the detail view.
func (c *Controller) Unfocus() {
	c.update(func(s *State) bool {
		if s.Focused == "" {
			return false
		}
		s.Focused = ""
		return true
	})
}

// ToggleCompleted flips the completion flag of skill id and recomputes
// the layout.
func (c *Controller) ToggleCompleted(id string) bool {
	return c.update(func(s *State) bool {
		if s.Graph == nil {
			return false
		}
		skill, ok := findSkill(*s.Graph, id)
		if !ok {
			return false
		}
		g := s.Graph.WithCompleted(id, !skill.Completed)
		res, err := layout.Compute(g, c.layout)
		if err != nil {
			return false
		}
		s.Graph = &g
		s.Layout = &res
		return true
	})
}

// Suggest runs a full suggestion request against src, publishing every
// intermediate list. Stale results are dropped silently.
func (c *Controller) Suggest(ctx context.Context, src suggest.Source, query string) error {
	gen, err := c.StartSuggest(query)
	if err != nil {
		return err
	}
	out, err := src.Suggest(ctx, query, func(jobs []suggest.Job) {
		c.UpdateSuggestions(gen, jobs)
	})
	if err != nil {
		out = suggest.Outcome{Err: err}
	}
	c.FinishSuggest(gen, out)
	return nil
}

// LoadTree selects occupation and fetches its tree from src.
func (c *Controller) LoadTree(ctx context.Context, src skilltree.Source, occupation string) error {
	gen, err := c.Select(occupation)
	if err != nil {
		return err
	}
	g, err := src.Fetch(ctx, occupation)
	c.FinishTree(gen, g, err)
	return nil
}

func clearTree(s *State) {
	s.Graph = nil
	s.Layout = nil
	s.TreeErr = nil
	s.TreeLoading = false
	s.Focused = ""
}

func findSkill(g skillgraph.Graph, id string) (skillgraph.SkillNode, bool) {
	for _, sk := range g.Skills {
		if sk.ID == id {
			return sk, true
		}
	}
	return skillgraph.SkillNode{}, false
}
