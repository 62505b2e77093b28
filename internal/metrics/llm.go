package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/mezotv/skill-tree/internal/llm"
)

type instrumentedProvider struct {
	inner llm.Provider
	c     *Collector
}

// InstrumentProvider counts and times every call made through p. The
// returned provider streams when p does.
func (c *Collector) InstrumentProvider(p llm.Provider) llm.Provider {
	return &instrumentedProvider{inner: p, c: c}
}

func (p *instrumentedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	start := time.Now()
	resp, err := p.inner.Generate(ctx, req)
	p.observe(ctx, "generate", start, err)
	return resp, err
}

func (p *instrumentedProvider) Stream(ctx context.Context, req llm.Request, onDelta func(string) error) (*llm.Response, error) {
	start := time.Now()
	resp, err := llm.Stream(ctx, p.inner, req, onDelta)
	if errors.Is(err, llm.ErrStreamingUnsupported) {
		return nil, err
	}
	p.observe(ctx, "stream", start, err)
	return resp, err
}

func (p *instrumentedProvider) ModelID() string { return p.inner.ModelID() }

func (p *instrumentedProvider) observe(ctx context.Context, mode string, start time.Time, err error) {
	purpose := llm.PurposeFrom(ctx)
	p.c.LLMCalls.WithLabelValues(purpose, mode, outcome(err)).Inc()
	p.c.LLMDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	var (
		rateLimit   *llm.ErrRateLimit
		unavailable *llm.ErrProviderUnavailable
		invalid     *llm.ErrInvalidResponse
		maxTokens   *llm.ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &rateLimit):
		return "rate_limited"
	case errors.As(err, &unavailable):
		return "unavailable"
	case errors.As(err, &invalid):
		return "invalid"
	case errors.As(err, &maxTokens):
		return "max_tokens"
	default:
		return "error"
	}
}
