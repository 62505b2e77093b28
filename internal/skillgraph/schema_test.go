package skillgraph

import (
	"encoding/json"
	"testing"

	"github.com/mezotv/skill-tree/internal/llm"
)

const sampleTree = `{
  "occupation": "Veterinarian",
  "subjects": ["Science", "Math"],
  "ages": [5, 6, 7],
  "schools": ["Elementary", "Middle School", "High School"],
  "skills": [
    {"id": "science-5-1", "subject": "Science", "age": 5, "school": "Elementary", "level": 1,
     "completed": false, "description": "Naming animals",
     "explanation": "Vets need to recognise many kinds of animals.", "prerequisites": []},
    {"id": "math-6-1", "subject": "Math", "age": 6, "school": "Elementary", "level": 1,
     "completed": false, "description": "Counting and weighing",
     "explanation": "Medicine doses depend on an animal's weight.", "prerequisites": ["science-5-1"]}
  ]
}`

func decodeAny(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return v
}

func TestGraphSchema_AcceptsSample(t *testing.T) {
	if err := llm.ValidateValue(GraphSchema, decodeAny(t, sampleTree)); err != nil {
		t.Fatalf("sample rejected: %v", err)
	}

	g, err := Decode([]byte(sampleTree))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := Validate(g); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestGraphSchema_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		skill string
	}{
		{"age too low", `{"id":"a","subject":"Math","age":4,"school":"Elementary","level":1,"completed":false,"description":"Adding","explanation":"Needed for every engineering task.","prerequisites":[]}`},
		{"level too high", `{"id":"a","subject":"Math","age":5,"school":"Elementary","level":6,"completed":false,"description":"Adding","explanation":"Needed for every engineering task.","prerequisites":[]}`},
		{"unknown tier", `{"id":"a","subject":"Math","age":5,"school":"College","level":1,"completed":false,"description":"Adding","explanation":"Needed for every engineering task.","prerequisites":[]}`},
		{"short explanation", `{"id":"a","subject":"Math","age":5,"school":"Elementary","level":1,"completed":false,"description":"Adding","explanation":"Too short","prerequisites":[]}`},
		{"missing field", `{"id":"a","subject":"Math","age":5,"school":"Elementary","level":1,"description":"Adding","explanation":"Needed for every engineering task.","prerequisites":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"occupation":"Engineer","subjects":["Math"],"ages":[5],"schools":["Elementary"],"skills":[` + tt.skill + `]}`
			if err := llm.ValidateValue(GraphSchema, decodeAny(t, doc)); err == nil {
				t.Fatal("expected schema violation")
			}
		})
	}
}
