package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Provider is the core abstraction for LLM interaction.
// Consumers call Generate with a Request and receive structured JSON.
type Provider interface {
	// Generate sends a prompt to the LLM and returns a structured response.
	// The request's Schema field, when set, instructs the provider to return
	// JSON conforming to that schema. The response Content will be the
	// validated JSON.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Streamer is implemented by providers that can deliver text incrementally.
// onDelta is called with each text fragment in arrival order; returning an
// error from it aborts the stream. The returned Response carries the full
// concatenated text and usage, if the provider reports it.
//
// Streams ignore Request.Schema: the caller parses the text itself.
type Streamer interface {
	Stream(ctx context.Context, req Request, onDelta func(string) error) (*Response, error)
}

// ErrStreamingUnsupported is returned by decorators whose inner provider
// does not implement Streamer.
var ErrStreamingUnsupported = errors.New("llm: provider does not support streaming")

// Stream streams req through p, or returns ErrStreamingUnsupported.
func Stream(ctx context.Context, p Provider, req Request, onDelta func(string) error) (*Response, error) {
	s, ok := p.(Streamer)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return s.Stream(ctx, req, onDelta)
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Skill-tree prompts are single
	// turn, so this usually holds one user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When set, the provider uses its native structured output mechanism.
	// When nil, the response Content is raw text as json.RawMessage.
	Schema *Schema

	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserMessage is shorthand for a single user turn.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema. Kebab-case, e.g. "skill-tree".
	Name string

	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the validated JSON object when a Schema was provided,
	// otherwise the raw text.
	Content json.RawMessage

	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
