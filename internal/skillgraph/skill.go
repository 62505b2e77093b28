package skillgraph

// Tier labels used by the skill-tree generator, in display order.
const (
	TierElementary = "Elementary"
	TierMiddle     = "Middle School"
	TierHigh       = "High School"
)

// Age bounds for a skill node.
const (
	MinAge = 5
	MaxAge = 18
)

// DefaultSchools returns the generator's tier labels in order.
func DefaultSchools() []string {
	return []string{TierElementary, TierMiddle, TierHigh}
}

// DefaultAges returns every age from MinAge to MaxAge.
func DefaultAges() []int {
	ages := make([]int, 0, MaxAge-MinAge+1)
	for a := MinAge; a <= MaxAge; a++ {
		ages = append(ages, a)
	}
	return ages
}

// SkillNode is a single skill in a learning graph.
type SkillNode struct {
	ID            string   `json:"id" validate:"required"`
	Subject       string   `json:"subject" validate:"required,min=3"`
	Age           int      `json:"age" validate:"min=5,max=18"`
	School        string   `json:"school" validate:"required"`
	Level         int      `json:"level" validate:"min=1,max=5"`
	Completed     bool     `json:"completed"`
	Description   string   `json:"description" validate:"required,min=5,max=100"`
	Explanation   string   `json:"explanation" validate:"required,min=20"`
	Prerequisites []string `json:"prerequisites"`
}

// Label returns the description, or the ID when no description is set.
func (s SkillNode) Label() string {
	if s.Description != "" {
		return s.Description
	}
	return s.ID
}

// Graph is a skill tree for one occupation. It is treated as immutable
// once built; a new occupation produces a new Graph.
type Graph struct {
	Occupation string      `json:"occupation,omitempty"`
	Subjects   []string    `json:"subjects" validate:"dive,required"`
	Ages       []int       `json:"ages"`
	Schools    []string    `json:"schools" validate:"dive,required"`
	Skills     []SkillNode `json:"skills" validate:"dive"`
}

// SubjectIndex returns the position of subject in the declared subject
// list, or -1 if it is not declared.
func (g Graph) SubjectIndex(subject string) int {
	for i, s := range g.Subjects {
		if s == subject {
			return i
		}
	}
	return -1
}

// SchoolIndex returns the position of school in the declared tier list,
// or -1 if it is not declared.
func (g Graph) SchoolIndex(school string) int {
	for i, s := range g.Schools {
		if s == school {
			return i
		}
	}
	return -1
}

// WithCompleted returns a copy of the graph with the completion flag of
// the skill id set to done. The receiver is left untouched.
func (g Graph) WithCompleted(id string, done bool) Graph {
	out := g
	out.Skills = make([]SkillNode, len(g.Skills))
	copy(out.Skills, g.Skills)
	for i := range out.Skills {
		if out.Skills[i].ID == id {
			out.Skills[i].Completed = done
		}
	}
	return out
}
