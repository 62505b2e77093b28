package skillgraph

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Index holds precomputed lookups over a validated Graph.
type Index struct {
	graph      Graph
	byID       map[string]*SkillNode
	bySubject  map[string][]SkillNode
	dependents map[string][]string
	topoOrder  []SkillNode
}

// NewIndex validates g and builds its indices.
func NewIndex(g Graph) (*Index, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}
	return buildIndex(g), nil
}

// buildIndex constructs the indices including a deterministic
// topological order over prerequisites (Kahn's algorithm).
func buildIndex(g Graph) *Index {
	ix := &Index{
		graph:      g,
		byID:       make(map[string]*SkillNode, len(g.Skills)),
		bySubject:  make(map[string][]SkillNode, len(g.Subjects)),
		dependents: make(map[string][]string),
	}

	for i := range ix.graph.Skills {
		ix.byID[ix.graph.Skills[i].ID] = &ix.graph.Skills[i]
	}

	for i := range ix.graph.Skills {
		for _, prereqID := range ix.graph.Skills[i].Prerequisites {
			ix.dependents[prereqID] = append(ix.dependents[prereqID], ix.graph.Skills[i].ID)
		}
	}

	inDegree := make(map[string]int, len(g.Skills))
	for _, s := range g.Skills {
		inDegree[s.ID] = len(s.Prerequisites)
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	// Sort initial queue for deterministic ordering
	sort.Strings(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		ix.topoOrder = append(ix.topoOrder, *ix.byID[id])

		sorted := slices.Clone(ix.dependents[id])
		sort.Strings(sorted)
		for _, depID := range sorted {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	// Group by subject, sorted by age asc then ID
	for _, s := range ix.graph.Skills {
		ix.bySubject[s.Subject] = append(ix.bySubject[s.Subject], s)
	}
	for _, skills := range ix.bySubject {
		sort.Slice(skills, func(i, j int) bool {
			if skills[i].Age != skills[j].Age {
				return skills[i].Age < skills[j].Age
			}
			return skills[i].ID < skills[j].ID
		})
	}

	return ix
}

// Graph returns the indexed graph.
func (ix *Index) Graph() Graph {
	return ix.graph
}

// Skill returns a skill by ID.
func (ix *Index) Skill(id string) (SkillNode, bool) {
	s, ok := ix.byID[id]
	if !ok {
		return SkillNode{}, false
	}
	return *s, true
}

// BySubject returns the skills of a subject ordered by age, then ID.
func (ix *Index) BySubject(subject string) []SkillNode {
	return slices.Clone(ix.bySubject[subject])
}

// TopologicalOrder returns every skill with prerequisites ahead of the
// skills that depend on them.
func (ix *Index) TopologicalOrder() []SkillNode {
	return slices.Clone(ix.topoOrder)
}

// Prerequisites returns the direct prerequisite skills for a given skill ID.
func (ix *Index) Prerequisites(id string) []SkillNode {
	s, ok := ix.byID[id]
	if !ok {
		return nil
	}
	result := make([]SkillNode, 0, len(s.Prerequisites))
	for _, prereqID := range s.Prerequisites {
		if p, ok := ix.byID[prereqID]; ok {
			result = append(result, *p)
		}
	}
	return result
}

// Dependents returns skills that directly depend on the given skill ID.
func (ix *Index) Dependents(id string) []SkillNode {
	depIDs := ix.dependents[id]
	result := make([]SkillNode, 0, len(depIDs))
	for _, depID := range depIDs {
		if s, ok := ix.byID[depID]; ok {
			result = append(result, *s)
		}
	}
	return result
}

// Decode parses a JSON skill graph.
func Decode(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("decode skill graph: %w", err)
	}
	return g, nil
}

// Normalize fills the axes a generator is allowed to omit: the occupation
// label, the age range and the tier list. Declared axes are kept as given.
// Subjects referenced by skills but not declared are appended in first-seen
// order, and a missing prerequisite list becomes an empty one.
func Normalize(g Graph, occupation string) Graph {
	out := g
	if strings.TrimSpace(out.Occupation) == "" {
		out.Occupation = strings.TrimSpace(occupation)
	}
	if len(out.Ages) == 0 {
		out.Ages = DefaultAges()
	}
	if len(out.Schools) == 0 {
		out.Schools = DefaultSchools()
	}
	out.Subjects = slices.Clone(g.Subjects)
	out.Skills = slices.Clone(g.Skills)
	for i, s := range out.Skills {
		if s.Subject != "" && !slices.Contains(out.Subjects, s.Subject) {
			out.Subjects = append(out.Subjects, s.Subject)
		}
		if s.Prerequisites == nil {
			out.Skills[i].Prerequisites = []string{}
		}
	}
	return out
}
