// Package session holds the state of one explore session: the current
// query and its suggestions, the selected occupation and its skill tree.
package session

import (
	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/skillgraph"
	"github.com/mezotv/skill-tree/internal/suggest"
)

// State is an immutable snapshot. Controllers replace it wholesale; the
// slices and pointers it holds are never mutated after publication.
type State struct {
	Query          string
	Jobs           []suggest.Job
	Fallback       bool
	SuggestErr     error
	SuggestLoading bool

	// Selected is the occupation whose tree is shown or loading.
	Selected    string
	Graph       *skillgraph.Graph
	Layout      *layout.Result
	TreeLoading bool
	TreeErr     error

	// Focused is the skill node whose details are shown.
	Focused string

	// SuggestGen and TreeGen identify the latest request of each kind.
	// Responses tagged with an older generation are discarded.
	SuggestGen uint64
	TreeGen    uint64
}

// FocusedSkill returns the focused skill, if any.
func (s State) FocusedSkill() (skillgraph.SkillNode, bool) {
	if s.Layout == nil || s.Focused == "" {
		return skillgraph.SkillNode{}, false
	}
	n, ok := s.Layout.Node(s.Focused)
	if !ok || n.Skill == nil {
		return skillgraph.SkillNode{}, false
	}
	return *n.Skill, true
}
