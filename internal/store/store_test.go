package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTable(t *testing.T) {
	s := openTestStore(t)

	var name string
	err := s.DB().QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, llmEventsTable,
	).Scan(&name)
	if err != nil {
		t.Fatalf("table %s not created: %v", llmEventsTable, err)
	}
}

func TestReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "p", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s.Close()

	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event to survive reopen, got %d", len(events))
	}
}

func TestAppendAndGetLLMEvent(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Second)
	err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider:     "gemini",
		Model:        "gemini-2.5-pro",
		Purpose:      "skill-tree",
		Attempt:      2,
		InputTokens:  120,
		OutputTokens: 900,
		LatencyMs:    4200,
		Success:      true,
		Streamed:     false,
		RequestBody:  "[user]\nVeterinarian",
		ResponseBody: `{"skills":[]}`,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	e, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil {
		t.Fatal("expected event, got nil")
	}
	if e.EventID == uuid.Nil {
		t.Error("expected a generated event id")
	}
	if e.Timestamp.Before(before) {
		t.Errorf("timestamp %v is before %v", e.Timestamp, before)
	}
	if e.Model != "gemini-2.5-pro" || e.Purpose != "skill-tree" || e.Attempt != 2 {
		t.Errorf("unexpected event: %+v", e.LLMRequestEventData)
	}
	if !e.Success || e.Streamed {
		t.Errorf("flags = success %v streamed %v", e.Success, e.Streamed)
	}
	if e.ResponseBody != `{"skills":[]}` {
		t.Errorf("response body = %q", e.ResponseBody)
	}
}

func TestGetLLMEventMissing(t *testing.T) {
	s := openTestStore(t)
	e, err := s.EventRepo().GetLLMEvent(context.Background(), 999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e != nil {
		t.Fatalf("expected nil for missing event, got %+v", e)
	}
}

func TestQueryLLMEventsFilters(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	purposes := []string{"suggest-jobs", "skill-tree", "suggest-jobs", "suggest-jobs"}
	for _, p := range purposes {
		if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: p, Success: true}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 events, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID <= all[i].ID {
			t.Fatalf("events not newest first: %d before %d", all[i-1].ID, all[i].ID)
		}
	}

	jobs, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "suggest-jobs", Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 events with limit, got %d", len(jobs))
	}
	for _, e := range jobs {
		if e.Purpose != "suggest-jobs" {
			t.Errorf("unexpected purpose %q", e.Purpose)
		}
	}

	older, err := repo.QueryLLMEvents(ctx, QueryOpts{Before: all[1].ID})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(older) != 2 {
		t.Fatalf("expected 2 events before id %d, got %d", all[1].ID, len(older))
	}

	future, err := repo.QueryLLMEvents(ctx, QueryOpts{Since: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(future) != 0 {
		t.Fatalf("expected no events in the future, got %d", len(future))
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-5-mini", Purpose: "suggest-jobs", InputTokens: 10, OutputTokens: 20, LatencyMs: 100, Success: true},
		{Provider: "openai", Model: "gpt-5-mini", Purpose: "suggest-jobs", InputTokens: 30, OutputTokens: 40, LatencyMs: 300, Success: false},
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "skill-tree", InputTokens: 5, OutputTokens: 500, LatencyMs: 2000, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("expected 2 purposes, got %d", len(byPurpose))
	}
	top := byPurpose[0]
	if top.Purpose != "suggest-jobs" || top.Model != "" {
		t.Fatalf("expected suggest-jobs first, got %+v", top)
	}
	if top.Calls != 2 || top.Failures != 1 || top.InputTokens != 40 || top.OutputTokens != 60 || top.AvgLatencyMs != 200 {
		t.Errorf("unexpected aggregate: %+v", top)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("expected 2 models, got %d", len(byModel))
	}
	if byModel[1].Model != "gemini-2.5-pro" || byModel[1].Calls != 1 || byModel[1].OutputTokens != 500 {
		t.Errorf("unexpected model aggregate: %+v", byModel[1])
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("SKILLTREE_DB", filepath.Join(dir, "nested", "custom.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if p != filepath.Join(dir, "nested", "custom.db") {
		t.Errorf("path = %q", p)
	}

	t.Setenv("SKILLTREE_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if p != filepath.Join(dir, "skilltree", "skilltree.db") {
		t.Errorf("path = %q", p)
	}
}
