package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type counterRepo struct {
	db *sql.DB
}

func (r *counterRepo) Get(ctx context.Context, key string) (int, error) {
	query, args := builder().
		Select("value").
		From(builder().Table("counters")).
		Where(entsql.EQ("key", key)).
		Query()

	var v int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get counter %q: %w", key, err)
	}
	return v, nil
}

func (r *counterRepo) Increment(ctx context.Context, key string) error {
	_, err := r.Add(ctx, key, 1)
	return err
}

func (r *counterRepo) Add(ctx context.Context, key string, delta int) (int, error) {
	query, args := builder().
		Insert("counters").
		Columns("key", "value").
		Values(key, delta).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("value", delta)
			}),
		).
		Returning("value").
		Query()

	var v int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&v); err != nil {
		return 0, fmt.Errorf("add counter %q: %w", key, err)
	}
	return v, nil
}
