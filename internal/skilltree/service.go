package skilltree

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mezotv/skill-tree/internal/cache"
	"github.com/mezotv/skill-tree/internal/llm"
	"github.com/mezotv/skill-tree/internal/skillgraph"
)

// Service generates skill trees with an LLM, reusing cached trees for
// occupations it has already seen.
type Service struct {
	provider llm.Provider
	cfg      Config
	cache    cache.Cache
	logger   *log.Logger
}

// NewService creates a skill-tree generation service. A nil cache
// disables caching; logger may be nil.
func NewService(provider llm.Provider, cfg Config, c cache.Cache, logger *log.Logger) *Service {
	if c == nil {
		c = cache.NewNull()
	}
	return &Service{provider: provider, cfg: cfg, cache: c, logger: logger}
}

// Fetch implements Source.
func (s *Service) Fetch(ctx context.Context, occupation string) (skillgraph.Graph, error) {
	return s.Generate(ctx, occupation)
}

// Generate returns the skill tree for occupation. The result is
// normalized and passes skillgraph.Validate.
func (s *Service) Generate(ctx context.Context, occupation string) (skillgraph.Graph, error) {
	occupation = strings.TrimSpace(occupation)
	if occupation == "" {
		return skillgraph.Graph{}, ErrEmptyOccupation
	}

	key := s.cacheKey(occupation)
	if g, ok := s.cached(ctx, key, occupation); ok {
		return g, nil
	}

	g, err := s.generate(ctx, occupation)
	if err != nil {
		return skillgraph.Graph{}, err
	}

	if data, err := json.Marshal(g); err == nil {
		if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
			s.warn("cache write failed", "err", err)
		}
	}
	return g, nil
}

func (s *Service) generate(ctx context.Context, occupation string) (skillgraph.Graph, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeSkillTree)

	req := llm.Request{
		System:      treeSystemPrompt,
		Messages:    llm.UserMessage(buildTreeUserMessage(occupation)),
		Schema:      skillgraph.GraphSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return skillgraph.Graph{}, fmt.Errorf("skill tree generation: %w", err)
	}

	g, err := skillgraph.Decode(resp.Content)
	if err != nil {
		return skillgraph.Graph{}, fmt.Errorf("parse skill tree: %w", err)
	}
	g = skillgraph.Normalize(g, occupation)
	if err := skillgraph.Validate(g); err != nil {
		return skillgraph.Graph{}, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	return g, nil
}

// cached returns a previously generated tree. Entries that no longer
// validate are dropped.
func (s *Service) cached(ctx context.Context, key, occupation string) (skillgraph.Graph, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.warn("cache read failed", "err", err)
		return skillgraph.Graph{}, false
	}
	if !ok {
		return skillgraph.Graph{}, false
	}

	g, err := skillgraph.Decode(data)
	if err == nil {
		g = skillgraph.Normalize(g, occupation)
		err = skillgraph.Validate(g)
	}
	if err != nil {
		s.warn("discarding cached skill tree", "occupation", occupation, "err", err)
		_ = s.cache.Delete(ctx, key)
		return skillgraph.Graph{}, false
	}
	if s.logger != nil {
		s.logger.Debug("skill tree cache hit", "occupation", occupation)
	}
	return g, true
}

func (s *Service) cacheKey(occupation string) string {
	return cache.Key("skilltree", strings.ToLower(occupation), s.provider.ModelID())
}

func (s *Service) warn(msg string, kv ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, kv...)
	}
}
