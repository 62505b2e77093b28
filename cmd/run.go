package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/mezotv/skill-tree/internal/cache"
	"github.com/mezotv/skill-tree/internal/config"
	"github.com/mezotv/skill-tree/internal/llm"
	"github.com/mezotv/skill-tree/internal/metrics"
	"github.com/mezotv/skill-tree/internal/skilltree"
	"github.com/mezotv/skill-tree/internal/store"
	"github.com/mezotv/skill-tree/internal/suggest"
)

// localStack is the in-process generation pipeline: audit store, LLM
// provider, tree cache and the two generation services.
type localStack struct {
	store    *store.Store
	provider llm.Provider
	cache    cache.Cache
	suggest  *suggest.Service
	trees    *skilltree.Service
}

// newLocalStack opens the store, builds the provider and services. A
// non-nil collector instruments the provider and the cache.
func newLocalStack(ctx context.Context, cfg config.Config, logger *log.Logger, m *metrics.Collector) (*localStack, error) {
	if !llm.Discover(&cfg.LLM) {
		return nil, errNoProvider
	}
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM, llm.Options{
		Recorder: st.EventRepo(),
		Logger:   logger,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	c, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	if m != nil {
		provider = m.InstrumentProvider(provider)
		c = m.InstrumentCache(c)
	}

	logger.Debug("generation stack ready", "provider", cfg.LLM.Provider, "model", provider.ModelID(), "cache", cfg.Cache.Backend)
	return &localStack{
		store:    st,
		provider: provider,
		cache:    c,
		suggest:  suggest.NewService(provider, cfg.Suggest, logger),
		trees:    skilltree.NewService(provider, cfg.Tree, c, logger),
	}, nil
}

// Close releases the cache and the store.
func (l *localStack) Close() error {
	return errors.Join(l.cache.Close(), l.store.Close())
}

// sources returns the suggestion and tree sources for the explorer and
// the one-shot commands: remote when endpoint is set, otherwise
// in-process. The returned close function is never nil.
func sources(ctx context.Context, cfg config.Config, logger *log.Logger) (suggest.Source, skilltree.Source, func() error, error) {
	if cfg.Client.Endpoint != "" {
		logger.Debug("using remote endpoint", "endpoint", cfg.Client.Endpoint)
		return suggest.NewClient(cfg.Client.Endpoint, nil, logger),
			skilltree.NewClient(cfg.Client.Endpoint, nil),
			func() error { return nil }, nil
	}

	stack, err := newLocalStack(ctx, cfg, logger, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return suggest.NewLocalSource(stack.suggest, logger), stack.trees, stack.Close, nil
}
