package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeSuggestJobs)
	if p := PurposeFrom(ctx); p != "suggest-jobs" {
		t.Fatalf("expected 'suggest-jobs', got %q", p)
	}
	if a := AttemptFrom(ctx); a != 1 {
		t.Fatalf("expected attempt 1 by default, got %d", a)
	}
}

func TestConfig_Validate(t *testing.T) {
	retry := RetryConfig{MaxAttempts: 1}
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic", Retry: retry},
			wantErr: "SKILLTREE_ANTHROPIC_API_KEY",
		},
		{
			name: "anthropic with key",
			cfg:  Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}, Retry: retry},
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai", Retry: retry},
			wantErr: "SKILLTREE_OPENAI_API_KEY",
		},
		{
			name: "openai with key",
			cfg:  Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}, Retry: retry},
		},
		{
			name:    "gemini without key",
			cfg:     Config{Provider: "gemini", Retry: retry},
			wantErr: "SKILLTREE_GEMINI_API_KEY",
		},
		{
			name: "mock needs no key",
			cfg:  Config{Provider: "mock", Retry: retry},
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown", Retry: retry},
			wantErr: "unknown LLM provider",
		},
		{
			name:    "zero attempts",
			cfg:     Config{Provider: "mock"},
			wantErr: "max_attempts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with mock provider should validate: %v", err)
	}
}

func TestDiscover(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	cfg := DefaultConfig()
	if Discover(&cfg) {
		t.Fatal("expected no key to be discovered")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	cfg = DefaultConfig()
	if !Discover(&cfg) {
		t.Fatal("expected a key to be discovered")
	}
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-oai" {
		t.Fatalf("expected OpenAI to win over Anthropic, got provider %q", cfg.Provider)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SKILLTREE_LLM_PROVIDER", "openrouter")
	t.Setenv("SKILLTREE_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("SKILLTREE_LLM_TIMEOUT", "15s")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	if cfg.Provider != "openrouter" || cfg.OpenRouter.APIKey != "sk-or" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Timeout != 15*time.Second {
		t.Fatalf("timeout = %v, want 15s", cfg.Timeout)
	}
}

func TestMockProvider_Stream(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Chunks: []string{"ab", "c"}},
		MockResponse{Content: json.RawMessage(`{"x":1}`)},
	)

	var got []string
	resp, err := mock.Stream(context.Background(), Request{}, func(d string) error {
		got = append(got, d)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || string(resp.Content) != "abc" {
		t.Fatalf("chunks = %v content = %q", got, resp.Content)
	}

	resp, err = Stream(context.Background(), mock, Request{}, func(string) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"x":1}` {
		t.Fatalf("content = %q", resp.Content)
	}
}

func TestStream_Unsupported(t *testing.T) {
	p := GenerateOnly(NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)}))
	_, err := Stream(context.Background(), p, Request{}, func(string) error { return nil })
	if !errors.Is(err, ErrStreamingUnsupported) {
		t.Fatalf("expected ErrStreamingUnsupported, got %v", err)
	}
}
