package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mezotv/skill-tree/internal/llm"
)

// ErrNoSuggestions is returned when the model produced no usable job.
var ErrNoSuggestions = errors.New("no suggestions generated")

// Service generates job suggestions with an LLM and delivers them as a
// sequence of cumulative envelopes.
type Service struct {
	provider llm.Provider
	cfg      Config
	schema   *llm.Schema
	logger   *log.Logger
}

// NewService creates a suggestion service. logger may be nil.
func NewService(provider llm.Provider, cfg Config, logger *log.Logger) *Service {
	if cfg.Count < 1 {
		cfg.Count = DefaultConfig().Count
	}
	return &Service{
		provider: provider,
		cfg:      cfg,
		schema:   suggestionsSchema(cfg.Count),
		logger:   logger,
	}
}

// Stream generates suggestions for query and calls emit with a growing
// envelope each time a job is accepted. An error from emit aborts
// generation and is returned.
func (s *Service) Stream(ctx context.Context, query string, emit func(Envelope) error) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeSuggestJobs)

	if s.cfg.Stream {
		err := s.stream(ctx, query, emit)
		if !errors.Is(err, llm.ErrStreamingUnsupported) {
			return err
		}
		if s.logger != nil {
			s.logger.Debug("provider cannot stream, using structured generation", "model", s.provider.ModelID())
		}
	}
	return s.generate(ctx, query, emit)
}

func (s *Service) stream(ctx context.Context, query string, emit func(Envelope) error) error {
	acc := &accumulator{limit: s.cfg.Count, emit: emit, logger: s.logger}
	var lines lineBuffer

	req := llm.Request{
		System:      suggestSystemPrompt,
		Messages:    llm.UserMessage(buildSuggestUserMessage(query, s.cfg.Count, true)),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}
	resp, err := llm.Stream(ctx, s.provider, req, func(delta string) error {
		return lines.push([]byte(delta), acc.line)
	})
	if err != nil {
		return fmt.Errorf("suggestion stream: %w", err)
	}
	if tail, ok := lines.flush(); ok {
		if err := acc.line(tail); err != nil {
			return err
		}
	}

	// Some models answer with one JSON document despite the line format.
	if len(acc.jobs) == 0 {
		if err := acc.document(string(resp.Content)); err != nil {
			return err
		}
	}
	if len(acc.jobs) == 0 {
		return ErrNoSuggestions
	}
	return nil
}

func (s *Service) generate(ctx context.Context, query string, emit func(Envelope) error) error {
	req := llm.Request{
		System:      suggestSystemPrompt,
		Messages:    llm.UserMessage(buildSuggestUserMessage(query, s.cfg.Count, false)),
		Schema:      s.schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("suggestion generation: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(resp.Content, &env); err != nil {
		return fmt.Errorf("parse suggestions: %w", err)
	}

	acc := &accumulator{limit: s.cfg.Count, emit: emit, logger: s.logger}
	for _, j := range env.Jobs {
		if err := acc.add(j); err != nil {
			return err
		}
	}
	if len(acc.jobs) == 0 {
		return ErrNoSuggestions
	}
	return nil
}

// accumulator collects distinct jobs up to limit and emits the running list.
type accumulator struct {
	limit  int
	jobs   []Job
	seen   map[string]bool
	emit   func(Envelope) error
	logger *log.Logger
}

// line accepts one line of model output holding a single job object.
// Lines that are not a job are dropped.
func (a *accumulator) line(raw string) error {
	text := llm.StripCodeFence(raw)
	text = strings.TrimSuffix(strings.TrimSpace(text), ",")
	if text == "" || text == "[" || text == "]" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		a.drop(raw, "malformed json")
		return nil
	}
	if err := llm.ValidateValue(JobSchema, v); err != nil {
		a.drop(raw, err.Error())
		return nil
	}
	var j Job
	if err := json.Unmarshal([]byte(text), &j); err != nil {
		a.drop(raw, err.Error())
		return nil
	}
	return a.add(j)
}

// document accepts a whole envelope written as one JSON document.
func (a *accumulator) document(text string) error {
	text = llm.StripCodeFence(text)
	if text == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil
	}
	if llm.ValidateValue(EnvelopeSchema, v) != nil {
		return nil
	}
	var env Envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return nil
	}
	for _, j := range env.Jobs {
		if err := a.add(j); err != nil {
			return err
		}
	}
	return nil
}

func (a *accumulator) add(j Job) error {
	j.Title = strings.TrimSpace(j.Title)
	j.Relevance = strings.TrimSpace(j.Relevance)
	if j.Title == "" || len(a.jobs) >= a.limit {
		return nil
	}
	key := strings.ToLower(j.Title)
	if a.seen[key] {
		return nil
	}
	if a.seen == nil {
		a.seen = make(map[string]bool)
	}
	a.seen[key] = true
	a.jobs = append(a.jobs, j)

	jobs := make([]Job, len(a.jobs))
	copy(jobs, a.jobs)
	return a.emit(Envelope{Jobs: jobs})
}

func (a *accumulator) drop(line, reason string) {
	if a.logger != nil {
		a.logger.Debug("dropped suggestion line", "reason", reason, "line", line)
	}
}

// LocalSource serves suggestions from an in-process Service. The service
// output is piped through the same Consumer a remote Client uses.
type LocalSource struct {
	service *Service
	logger  *log.Logger
}

// NewLocalSource wraps service as a Source. logger may be nil.
func NewLocalSource(service *Service, logger *log.Logger) *LocalSource {
	return &LocalSource{service: service, logger: logger}
}

func (l *LocalSource) Suggest(ctx context.Context, query string, onUpdate func([]Job)) (Outcome, error) {
	if strings.TrimSpace(query) == "" {
		return Outcome{}, ErrEmptyQuery
	}

	pr, pw := io.Pipe()
	go func() {
		err := l.service.Stream(ctx, query, func(env Envelope) error {
			return WriteEvent(pw, env)
		})
		pw.CloseWithError(err)
	}()
	defer pr.Close()

	return consumeOutcome(ctx, pr, l.logger, onUpdate), nil
}
