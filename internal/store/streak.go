package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const streakTable = "streak"

type streakRepo struct {
	db *sql.DB
}

func (r *streakRepo) Get(ctx context.Context) (StreakRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("current", "last_activity").
		From(entsql.Table(streakTable)).
		Where(entsql.EQ("id", 1)).
		Query()

	var rec StreakRecord
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&rec.Current, &rec.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return StreakRecord{}, nil
	}
	if err != nil {
		return StreakRecord{}, fmt.Errorf("get streak: %w", err)
	}
	return rec, nil
}

func (r *streakRepo) Save(ctx context.Context, rec StreakRecord) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(streakTable).
		Columns("id", "current", "last_activity").
		Values(1, rec.Current, rec.LastActivity).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}
