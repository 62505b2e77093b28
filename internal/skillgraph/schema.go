package skillgraph

import "github.com/mezotv/skill-tree/internal/llm"

func schoolEnum() []any {
	out := make([]any, 0, 3)
	for _, s := range DefaultSchools() {
		out = append(out, s)
	}
	return out
}

// GraphSchema is the structured output schema for skill-tree generation.
var GraphSchema = &llm.Schema{
	Name:        "skill-tree",
	Description: "A skill tree of school subjects leading to an occupation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"occupation": map[string]any{
				"type":        "string",
				"description": "The occupation this skill tree leads to",
			},
			"subjects": map[string]any{
				"type":        "array",
				"description": "Relevant school subjects, e.g. Math, Science, Language, History",
				"items":       map[string]any{"type": "string", "minLength": 3},
				"minItems":    1,
			},
			"ages": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer", "minimum": MinAge, "maximum": MaxAge},
			},
			"schools": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "enum": schoolEnum()},
			},
			"skills": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": `Unique identifier such as "math-5-1"`,
							"minLength":   1,
						},
						"subject": map[string]any{
							"type":      "string",
							"minLength": 3,
						},
						"age": map[string]any{
							"type":        "integer",
							"description": "Age when the skill is typically learned",
							"minimum":     MinAge,
							"maximum":     MaxAge,
						},
						"school": map[string]any{
							"type": "string",
							"enum": schoolEnum(),
						},
						"level": map[string]any{
							"type":        "integer",
							"description": "Difficulty from 1 (easiest) to 5 (hardest)",
							"minimum":     1,
							"maximum":     5,
						},
						"completed": map[string]any{
							"type": "boolean",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "Concise name for the skill",
							"minLength":   5,
							"maxLength":   100,
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why the skill matters for the occupation",
							"minLength":   20,
						},
						"prerequisites": map[string]any{
							"type":        "array",
							"description": "Ids of skills that should be learned first",
							"items":       map[string]any{"type": "string"},
						},
					},
					"required": []any{
						"id", "subject", "age", "school", "level",
						"completed", "description", "explanation", "prerequisites",
					},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"occupation", "subjects", "ages", "schools", "skills"},
		"additionalProperties": false,
	},
}
