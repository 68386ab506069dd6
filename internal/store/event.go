package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo backed by the request_events table and
// the event sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendRequestEvent(ctx context.Context, data RequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().
		Insert("request_events").
		Columns(
			"sequence", "timestamp", "source", "purpose", "model",
			"attempt", "status", "latency_ms", "success", "error_message",
			"input_tokens", "output_tokens",
		).
		Values(
			seqNum, time.Now().UnixMilli(), data.Source, data.Purpose, data.Model,
			data.Attempt, data.Status, data.LatencyMs, data.Success, data.ErrorMessage,
			data.InputTokens, data.OutputTokens,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryRequestEvents(ctx context.Context, opts QueryOpts) ([]RequestEvent, error) {
	sel := builder().
		Select(
			"sequence", "timestamp", "source", "purpose", "model",
			"attempt", "status", "latency_ms", "success", "error_message",
			"input_tokens", "output_tokens",
		).
		From(builder().Table("request_events")).
		OrderBy(entsql.Desc("sequence"))

	var preds []*entsql.Predicate
	if opts.Purpose != "" {
		preds = append(preds, entsql.EQ("purpose", opts.Purpose))
	}
	if opts.Source != "" {
		preds = append(preds, entsql.EQ("source", opts.Source))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query request events: %w", err)
	}
	defer rows.Close()

	var out []RequestEvent
	for rows.Next() {
		var (
			ev RequestEvent
			ts int64
		)
		err := rows.Scan(
			&ev.Sequence, &ts, &ev.Source, &ev.Purpose, &ev.Model,
			&ev.Attempt, &ev.Status, &ev.LatencyMs, &ev.Success, &ev.ErrorMessage,
			&ev.InputTokens, &ev.OutputTokens,
		)
		if err != nil {
			return nil, fmt.Errorf("scan request event: %w", err)
		}
		ev.Timestamp = time.UnixMilli(ts)
		out = append(out, ev)
	}
	return out, rows.Err()
}
