package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	profileExamSubject = "exam_subject"
	profileExamDate    = "exam_date"

	profileDateLayout = "2006-01-02"
)

type profileRepo struct {
	db *sql.DB
}

func (r *profileRepo) Get(ctx context.Context) (Profile, error) {
	query, args := builder().
		Select("key", "value").
		From(builder().Table("profile")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}
	defer rows.Close()

	var p Profile
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Profile{}, fmt.Errorf("scan profile: %w", err)
		}
		switch k {
		case profileExamSubject:
			p.ExamSubject = v
		case profileExamDate:
			d, err := time.ParseInLocation(profileDateLayout, v, time.Local)
			if err != nil {
				return Profile{}, fmt.Errorf("parse exam date %q: %w", v, err)
			}
			p.ExamDate = d
		}
	}
	return p, rows.Err()
}

func (r *profileRepo) Save(ctx context.Context, p Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := upsertProfileKey(ctx, tx, profileExamSubject, p.ExamSubject); err != nil {
		return err
	}

	if p.ExamDate.IsZero() {
		query, args := builder().
			Delete("profile").
			Where(entsql.EQ("key", profileExamDate)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear exam date: %w", err)
		}
	} else if err := upsertProfileKey(ctx, tx, profileExamDate, p.ExamDate.Format(profileDateLayout)); err != nil {
		return err
	}

	return tx.Commit()
}

func upsertProfileKey(ctx context.Context, tx *sql.Tx, key, value string) error {
	query, args := builder().
		Insert("profile").
		Columns("key", "value").
		Values(key, value).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save profile %s: %w", key, err)
	}
	return nil
}
