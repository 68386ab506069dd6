package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const dayLayout = "2006-01-02"

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) RecordSession(ctx context.Context, rec SessionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("record session: empty id")
	}

	query, args := builder().
		Insert("sessions").
		Columns(
			"id", "topic_key", "subject", "day", "started_at", "finished_at",
			"retries", "correct", "solution_revealed",
		).
		Values(
			rec.ID, rec.TopicKey, rec.Subject, rec.FinishedAt.Format(dayLayout),
			rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli(),
			rec.Retries, rec.Correct, rec.SolutionRevealed,
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *sessionRepo) Streak(ctx context.Context, now time.Time) (int, error) {
	sel := builder().
		Select("day").
		From(builder().Table("sessions")).
		Distinct().
		Where(entsql.LTE("day", now.Format(dayLayout))).
		OrderBy(entsql.Desc("day"))

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("query session days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return 0, fmt.Errorf("scan session day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	return countStreak(days, now), nil
}

// countStreak walks distinct days in descending order. The streak may start
// today or yesterday; any gap ends it.
func countStreak(days []string, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	today := now.Format(dayLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dayLayout)

	var cursor time.Time
	switch days[0] {
	case today:
		cursor = now
	case yesterday:
		cursor = now.AddDate(0, 0, -1)
	default:
		return 0
	}

	streak := 0
	for _, d := range days {
		if d != cursor.Format(dayLayout) {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

func (r *sessionRepo) Recent(ctx context.Context, limit int) ([]SessionRecord, error) {
	sel := builder().
		Select(
			"id", "topic_key", "subject", "started_at", "finished_at",
			"retries", "correct", "solution_revealed",
		).
		From(builder().Table("sessions")).
		OrderBy(entsql.Desc("finished_at"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var (
			rec               SessionRecord
			started, finished int64
		)
		err := rows.Scan(
			&rec.ID, &rec.TopicKey, &rec.Subject, &started, &finished,
			&rec.Retries, &rec.Correct, &rec.SolutionRevealed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started)
		rec.FinishedAt = time.UnixMilli(finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}
