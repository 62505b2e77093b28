// Package layout positions a skill graph on a 2D plane.
//
// Subjects become columns, ages become rows (oldest at the top), school
// tiers and ages get marker nodes on a vertical spine to the left, and an
// optional occupation node sits above everything. Compute is pure: the same
// graph and config always produce the same nodes and edges.
package layout

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mezotv/skill-tree/internal/skillgraph"
)

// Compute validates g and lays it out.
func Compute(g skillgraph.Graph, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := skillgraph.Validate(g); err != nil {
		return Result{}, err
	}

	var res Result
	y := func(age float64) float64 {
		return (float64(cfg.AnchorAge) - age) * cfg.VerticalSpacing
	}

	// School tier markers at the midpoint of each tier's age span.
	type marker struct {
		id    string
		y     float64
		order int
	}
	var tiers []marker
	for i, school := range g.Schools {
		minAge, maxAge, ok := ageSpan(g.Skills, func(s skillgraph.SkillNode) bool { return s.School == school })
		if !ok {
			continue
		}
		m := marker{id: fmt.Sprintf("school-%d", i), y: y(float64(minAge+maxAge) / 2), order: i}
		tiers = append(tiers, m)
		res.Nodes = append(res.Nodes, Node{ID: m.id, Kind: KindTier, X: cfg.TierLabelX, Y: m.y, Label: school})
	}
	slices.SortStableFunc(tiers, func(a, b marker) int {
		return cmp.Compare(a.y, b.y)
	})
	for i := 0; i+1 < len(tiers); i++ {
		res.Edges = append(res.Edges, Edge{
			ID:     fmt.Sprintf("school-timeline-%d", i),
			Kind:   EdgeTimeline,
			Source: tiers[i].id,
			Target: tiers[i+1].id,
		})
	}

	if cfg.AgeMarkers {
		ages := slices.Clone(g.Ages)
		slices.Sort(ages)
		ages = slices.Compact(ages)
		slices.Reverse(ages)
		for _, age := range ages {
			res.Nodes = append(res.Nodes, Node{
				ID:    ageMarkerID(age),
				Kind:  KindAge,
				X:     cfg.AgeLabelX,
				Y:     y(float64(age)),
				Label: fmt.Sprintf("Age %d", age),
			})
		}
		for i := 0; i+1 < len(ages); i++ {
			res.Edges = append(res.Edges, Edge{
				ID:     fmt.Sprintf("age-timeline-%d", i),
				Kind:   EdgeTimeline,
				Source: ageMarkerID(ages[i]),
				Target: ageMarkerID(ages[i+1]),
			})
		}
	}

	for i := range g.Skills {
		s := g.Skills[i]
		res.Nodes = append(res.Nodes, Node{
			ID:    s.ID,
			Kind:  KindSkill,
			X:     float64(g.SubjectIndex(s.Subject)) * cfg.HorizontalSpacing,
			Y:     y(float64(s.Age)),
			Label: s.Label(),
			Skill: &s,
		})
	}

	chains := subjectChains(g)

	if cfg.Root && g.Occupation != "" && len(g.Skills) > 0 {
		top := maxSkillAge(g.Skills)
		if len(g.Ages) > 0 {
			top = max(top, slices.Max(g.Ages))
		}
		res.Nodes = append(res.Nodes, Node{
			ID:    RootID,
			Kind:  KindOccupation,
			X:     float64(len(g.Subjects)-1) * cfg.HorizontalSpacing / 2,
			Y:     y(float64(top)) - cfg.RootOffset,
			Label: g.Occupation,
		})
		for _, chain := range chains {
			if len(chain) == 0 {
				continue
			}
			head := highest(chain)
			res.Edges = append(res.Edges, Edge{
				ID:     "occupation-" + head.ID,
				Kind:   EdgeRoot,
				Source: RootID,
				Target: head.ID,
			})
		}
	}

	// Consecutive skills in a subject, pointing from the older skill back
	// to the younger one.
	for _, chain := range chains {
		for i := 0; i+1 < len(chain); i++ {
			current, next := chain[i], chain[i+1]
			res.Edges = append(res.Edges, Edge{
				ID:        current.ID + "-" + next.ID,
				Kind:      EdgeChain,
				Source:    next.ID,
				Target:    current.ID,
				Completed: current.Completed,
			})
		}
	}

	if cfg.PrerequisiteEdges {
		completed := make(map[string]bool, len(g.Skills))
		for _, s := range g.Skills {
			completed[s.ID] = s.Completed
		}
		for _, s := range g.Skills {
			for _, p := range s.Prerequisites {
				res.Edges = append(res.Edges, Edge{
					ID:        "prereq-" + p + "-" + s.ID,
					Kind:      EdgePrerequisite,
					Source:    p,
					Target:    s.ID,
					Completed: completed[p],
				})
			}
		}
	}

	return res, nil
}

func ageMarkerID(age int) string {
	return fmt.Sprintf("age-%d", age)
}

func ageSpan(skills []skillgraph.SkillNode, keep func(skillgraph.SkillNode) bool) (lo, hi int, ok bool) {
	for _, s := range skills {
		if !keep(s) {
			continue
		}
		if !ok || s.Age < lo {
			lo = s.Age
		}
		if !ok || s.Age > hi {
			hi = s.Age
		}
		ok = true
	}
	return lo, hi, ok
}

func maxSkillAge(skills []skillgraph.SkillNode) int {
	_, hi, _ := ageSpan(skills, func(skillgraph.SkillNode) bool { return true })
	return hi
}

// subjectChains groups skills by declared subject, each group ordered by
// age and then ID.
func subjectChains(g skillgraph.Graph) [][]skillgraph.SkillNode {
	chains := make([][]skillgraph.SkillNode, len(g.Subjects))
	for _, s := range g.Skills {
		i := g.SubjectIndex(s.Subject)
		chains[i] = append(chains[i], s)
	}
	for _, chain := range chains {
		slices.SortFunc(chain, func(a, b skillgraph.SkillNode) int {
			if c := cmp.Compare(a.Age, b.Age); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})
	}
	return chains
}

// highest returns the oldest skill of a sorted chain, preferring the
// smallest ID among equals.
func highest(chain []skillgraph.SkillNode) skillgraph.SkillNode {
	top := chain[len(chain)-1]
	for i := len(chain) - 2; i >= 0 && chain[i].Age == top.Age; i-- {
		top = chain[i]
	}
	return top
}
