package skillgraph

import (
	"strings"
	"testing"
)

func mathGraph() Graph {
	return Graph{
		Occupation: "Engineer",
		Subjects:   []string{"Math", "Science"},
		Ages:       []int{5, 6, 7},
		Schools:    []string{TierElementary},
		Skills: []SkillNode{
			{ID: "m5", Subject: "Math", Age: 5, School: TierElementary, Level: 1, Completed: true, Description: "Skill m5", Explanation: "Builds toward the next skill."},
			{ID: "m6", Subject: "Math", Age: 6, School: TierElementary, Level: 1, Prerequisites: []string{"m5"}, Description: "Skill m6", Explanation: "Builds toward the next skill."},
			{ID: "s7", Subject: "Science", Age: 7, School: TierElementary, Level: 2, Description: "Skill s7", Explanation: "Builds toward the next skill."},
		},
	}
}

func TestValidate_ValidGraphPasses(t *testing.T) {
	if err := Validate(mathGraph()); err != nil {
		t.Fatalf("valid graph rejected: %v", err)
	}
}

func TestValidate_EmptyGraphPasses(t *testing.T) {
	if err := Validate(Graph{}); err != nil {
		t.Fatalf("empty graph rejected: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *Graph)
		want   string
	}{
		{
			name:   "undeclared subject",
			mutate: func(g *Graph) { g.Skills[0].Subject = "Art" },
			want:   `undeclared subject "Art"`,
		},
		{
			name:   "undeclared school",
			mutate: func(g *Graph) { g.Skills[0].School = "College" },
			want:   `undeclared school "College"`,
		},
		{
			name:   "duplicate id",
			mutate: func(g *Graph) { g.Skills[1].ID = "m5"; g.Skills[1].Prerequisites = nil },
			want:   "duplicate skill ID",
		},
		{
			name:   "missing id",
			mutate: func(g *Graph) { g.Skills[2].ID = "" },
			want:   "skills[2].id is required",
		},
		{
			name:   "age too low",
			mutate: func(g *Graph) { g.Skills[0].Age = 4 },
			want:   "skills[0].age must be at least 5",
		},
		{
			name:   "age too high",
			mutate: func(g *Graph) { g.Skills[0].Age = 19 },
			want:   "skills[0].age must be at most 18",
		},
		{
			name:   "level out of range",
			mutate: func(g *Graph) { g.Skills[2].Level = 6 },
			want:   "skills[2].level must be at most 5",
		},
		{
			name:   "description too long",
			mutate: func(g *Graph) { g.Skills[0].Description = strings.Repeat("x", 101) },
			want:   "skills[0].description must be at most 100 characters",
		},
		{
			name:   "explanation too short",
			mutate: func(g *Graph) { g.Skills[0].Explanation = "too short" },
			want:   "skills[0].explanation must be at least 20 characters",
		},
		{
			name:   "age marker id",
			mutate: func(g *Graph) { g.Skills[2].ID = "age-5" },
			want:   `skill ID "age-5" is reserved`,
		},
		{
			name:   "tier marker id",
			mutate: func(g *Graph) { g.Skills[2].ID = "school-0" },
			want:   `skill ID "school-0" is reserved`,
		},
		{
			name:   "root id",
			mutate: func(g *Graph) { g.Skills[2].ID = "occupation-master" },
			want:   `skill ID "occupation-master" is reserved`,
		},
		{
			name:   "missing description",
			mutate: func(g *Graph) { g.Skills[1].Description = "" },
			want:   "skills[1].description is required",
		},
		{
			name:   "missing explanation",
			mutate: func(g *Graph) { g.Skills[1].Explanation = "" },
			want:   "skills[1].explanation is required",
		},
		{
			name:   "dangling prerequisite",
			mutate: func(g *Graph) { g.Skills[1].Prerequisites = []string{"nonexistent"} },
			want:   `nonexistent prerequisite "nonexistent"`,
		},
		{
			name: "cycle",
			mutate: func(g *Graph) {
				g.Skills[0].Prerequisites = []string{"m6"}
			},
			want: "cycle detected involving skills: m5, m6",
		},
		{
			name:   "self prerequisite",
			mutate: func(g *Graph) { g.Skills[2].Prerequisites = []string{"s7"} },
			want:   "lists itself",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mathGraph()
			g.Skills = append([]SkillNode(nil), g.Skills...)
			tt.mutate(&g)
			err := Validate(g)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error should contain %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestIsReservedID(t *testing.T) {
	for id, want := range map[string]bool{
		"age-12":            true,
		"school-2":          true,
		"occupation-master": true,
		"age-timeline-0":    true,
		"math-5-1":          false,
		"age-five":          false,
		"school":            false,
	} {
		if got := IsReservedID(id); got != want {
			t.Errorf("IsReservedID(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	g := mathGraph()
	g.Skills = append([]SkillNode(nil), g.Skills...)
	g.Skills[0].Subject = "Art"
	g.Skills[2].School = "College"

	err := Validate(g)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"Art", "College"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got: %v", want, err)
		}
	}
}
