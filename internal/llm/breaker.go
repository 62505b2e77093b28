package llm

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"
)

// BreakerConfig configures the circuit breaker in front of a provider.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32 `toml:"max_requests"`

	// Interval is the cyclic period after which closed-state counts reset.
	Interval time.Duration `toml:"interval"`

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `toml:"timeout"`

	// MinRequests is the sample size before the failure ratio is evaluated.
	MinRequests uint32 `toml:"min_requests"`

	// FailureRatio trips the breaker once reached.
	FailureRatio float64 `toml:"failure_ratio"`
}

// BreakerProvider fails fast with ErrProviderUnavailable while the upstream
// provider keeps failing.
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// WithBreaker wraps a Provider with a circuit breaker. logger may be nil.
func WithBreaker(p Provider, cfg BreakerConfig, logger *log.Logger) Provider {
	settings := gobreaker.Settings{
		Name:        p.ModelID(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: countsAsSuccess,
	}
	if logger != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Warn("llm circuit breaker state changed", "model", name, "from", from.String(), "to", to.String())
		}
	}
	return &BreakerProvider{inner: p, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.inner.Generate(ctx, req)
	})
	if err != nil {
		return nil, mapBreakerError(err)
	}
	return out.(*Response), nil
}

func (b *BreakerProvider) Stream(ctx context.Context, req Request, onDelta func(string) error) (*Response, error) {
	if _, ok := b.inner.(Streamer); !ok {
		return nil, ErrStreamingUnsupported
	}
	out, err := b.cb.Execute(func() (any, error) {
		return Stream(ctx, b.inner, req, onDelta)
	})
	if err != nil {
		return nil, mapBreakerError(err)
	}
	return out.(*Response), nil
}

func (b *BreakerProvider) ModelID() string {
	return b.inner.ModelID()
}

// State reports the breaker state: "closed", "half-open" or "open".
func (b *BreakerProvider) State() string {
	return b.cb.State().String()
}

// countsAsSuccess decides which errors say nothing about upstream health.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrStreamingUnsupported) {
		return true
	}
	var invResp *ErrInvalidResponse
	var maxTok *ErrMaxTokensExceeded
	return errors.As(err, &invResp) || errors.As(err, &maxTok)
}

func mapBreakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &ErrProviderUnavailable{Open: true, Err: err}
	}
	return err
}
