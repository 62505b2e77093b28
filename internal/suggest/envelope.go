package suggest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mezotv/skill-tree/internal/llm"
)

// ErrEmptyQuery is returned when a suggestion is requested for a blank query.
var ErrEmptyQuery = errors.New("query is required")

// Job is a single suggested occupation.
type Job struct {
	Title     string `json:"title"`
	Relevance string `json:"relevance"`
}

// Envelope is one complete suggestion message. Each envelope received
// replaces the previous one; the count of jobs is not fixed.
type Envelope struct {
	Jobs []Job `json:"jobs"`
}

// Titles returns the job titles in order.
func (e Envelope) Titles() []string {
	out := make([]string, len(e.Jobs))
	for i, j := range e.Jobs {
		out[i] = j.Title
	}
	return out
}

var defaultJobs = []Job{
	{Title: "Software Engineer", Relevance: "Builds the apps and games people use every day"},
	{Title: "Data Scientist", Relevance: "Finds answers hidden in numbers"},
	{Title: "Product Manager", Relevance: "Decides what a team should build next"},
	{Title: "UX Designer", Relevance: "Makes apps and websites easy to use"},
	{Title: "Marketing Manager", Relevance: "Tells people about great products"},
}

// DefaultJobs returns the static list shown when suggestions cannot be fetched.
func DefaultJobs() []Job {
	out := make([]Job, len(defaultJobs))
	copy(out, defaultJobs)
	return out
}

// jobDefinition is shared by the envelope and generation schemas. Strict
// definitions reject unknown properties, as structured output modes require.
func jobDefinition(strict bool) map[string]any {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Job title",
			},
			"relevance": map[string]any{
				"type":        "string",
				"description": "Why this job is relevant to the query",
			},
		},
		"required": []any{"title", "relevance"},
	}
	if strict {
		def["additionalProperties"] = false
	}
	return def
}

// EnvelopeSchema is the shape every streamed envelope must satisfy.
var EnvelopeSchema = &llm.Schema{
	Name:        "suggestion-envelope",
	Description: "A list of job suggestions",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"jobs": map[string]any{
				"type":  "array",
				"items": jobDefinition(false),
			},
		},
		"required": []any{"jobs"},
	},
}

// JobSchema validates a single streamed job line.
var JobSchema = &llm.Schema{
	Name:        "job-suggestion",
	Description: "A single job suggestion",
	Definition:  jobDefinition(false),
}

// suggestionsSchema asks for exactly count jobs.
func suggestionsSchema(count int) *llm.Schema {
	return &llm.Schema{
		Name:        fmt.Sprintf("job-suggestions-%d", count),
		Description: fmt.Sprintf("Exactly %d job suggestions", count),
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"jobs": map[string]any{
					"type":     "array",
					"items":    jobDefinition(true),
					"minItems": count,
					"maxItems": count,
				},
			},
			"required":             []any{"jobs"},
			"additionalProperties": false,
		},
	}
}

// WriteEvent writes env as one server-sent event data line.
func WriteEvent(w io.Writer, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}
