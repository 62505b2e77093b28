package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// eventRepo implements EventRepo with ent's SQL builder over the SQLite driver.
type eventRepo struct {
	drv *entsql.Driver
}

var eventColumns = []string{
	"id", "event_id", "timestamp", "provider", "model", "purpose", "attempt",
	"input_tokens", "output_tokens", "latency_ms", "success", "streamed",
	"error_message", "request_body", "response_body",
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	if data.Attempt < 1 {
		data.Attempt = 1
	}

	query, args := builder().Insert(llmEventsTable).
		Columns(eventColumns[1:]...).
		Values(
			uuid.NewString(),
			time.Now().UTC(),
			data.Provider,
			data.Model,
			data.Purpose,
			data.Attempt,
			data.InputTokens,
			data.OutputTokens,
			data.LatencyMs,
			data.Success,
			data.Streamed,
			data.ErrorMessage,
			data.RequestBody,
			data.ResponseBody,
		).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := builder().Select(eventColumns...).
		From(entsql.Table(llmEventsTable)).
		OrderBy(entsql.Desc("id"))
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("id", opts.Before))
	}
	if !opts.Since.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.Since.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate LLM events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	query, args := builder().Select(eventColumns...).
		From(entsql.Table(llmEventsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("get LLM event %d: %w", id, err)
		}
		return nil, nil
	}
	return scanEvent(rows)
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	usage, err := r.usageBy(ctx, "purpose")
	if err != nil {
		return nil, err
	}
	for i := range usage {
		usage[i].Purpose, usage[i].Model = usage[i].Model, ""
	}
	return usage, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.usageBy(ctx, "model")
}

// usageBy aggregates by one column; the group key lands in LLMUsage.Model.
func (r *eventRepo) usageBy(ctx context.Context, column string) ([]LLMUsage, error) {
	query, args := builder().Select(
		column,
		entsql.As(entsql.Count("*"), "calls"),
		entsql.As("SUM(CASE WHEN `success` THEN 0 ELSE 1 END)", "failures"),
		entsql.As(entsql.Sum("input_tokens"), "input_total"),
		entsql.As(entsql.Sum("output_tokens"), "output_total"),
		entsql.As(entsql.Avg("latency_ms"), "avg_latency"),
	).
		From(entsql.Table(llmEventsTable)).
		GroupBy(column).
		OrderBy(entsql.Desc("calls"), column).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query usage by %s: %w", column, err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var (
			u             LLMUsage
			failures      sql.NullInt64
			in, outTokens sql.NullInt64
			avg           sql.NullFloat64
		)
		if err := rows.Scan(&u.Model, &u.Calls, &failures, &in, &outTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		u.Failures = int(failures.Int64)
		u.InputTokens = int(in.Int64)
		u.OutputTokens = int(outTokens.Int64)
		u.AvgLatencyMs = int64(avg.Float64)
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage: %w", err)
	}
	return out, nil
}

func scanEvent(rows *entsql.Rows) (*LLMEvent, error) {
	var (
		e       LLMEvent
		eventID string
	)
	err := rows.Scan(
		&e.ID, &eventID, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose, &e.Attempt,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.Streamed,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody,
	)
	if err != nil {
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, fmt.Errorf("parse event id %q: %w", eventID, err)
	}
	e.EventID = id
	return &e, nil
}
