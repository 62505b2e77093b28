package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mezotv/skill-tree/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an
// audit event and a log line.
type LoggingProvider struct {
	inner    Provider
	provider string
	recorder store.LLMEventRecorder
	logger   *log.Logger
}

// WithLogging wraps a Provider with event logging. recorder and logger may
// each be nil.
func WithLogging(p Provider, providerName string, recorder store.LLMEventRecorder, logger *log.Logger) Provider {
	return &LoggingProvider{inner: p, provider: providerName, recorder: recorder, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	l.record(ctx, req, resp, err, false, time.Since(start))
	return resp, err
}

func (l *LoggingProvider) Stream(ctx context.Context, req Request, onDelta func(string) error) (*Response, error) {
	if _, ok := l.inner.(Streamer); !ok {
		return nil, ErrStreamingUnsupported
	}
	start := time.Now()
	resp, err := Stream(ctx, l.inner, req, onDelta)
	l.record(ctx, req, resp, err, true, time.Since(start))
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) record(ctx context.Context, req Request, resp *Response, err error, streamed bool, elapsed time.Duration) {
	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		Attempt:     AttemptFrom(ctx),
		LatencyMs:   elapsed.Milliseconds(),
		Success:     err == nil,
		Streamed:    streamed,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	if l.logger != nil {
		kv := []any{
			"purpose", data.Purpose,
			"model", data.Model,
			"attempt", data.Attempt,
			"streamed", streamed,
			"latency", elapsed.Round(time.Millisecond),
			"in", data.InputTokens,
			"out", data.OutputTokens,
		}
		if err != nil {
			l.logger.Warn("llm request failed", append(kv, "err", err)...)
		} else {
			l.logger.Debug("llm request", kv...)
		}
	}

	if l.recorder == nil {
		return
	}
	// Audit failures never fail the request.
	if logErr := l.recorder.AppendLLMRequest(context.WithoutCancel(ctx), data); logErr != nil && l.logger != nil {
		l.logger.Warn("failed to record LLM request event", "err", logErr)
	}
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}

	if req.Schema != nil {
		if schemaDef, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, schemaDef)
		}
	}

	return b.String()
}
