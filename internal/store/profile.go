package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const profileTable = "profile"

type profileRepo struct {
	db *sql.DB
}

func (r *profileRepo) Subject(ctx context.Context) (string, bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("subject").
		From(entsql.Table(profileTable)).
		Where(entsql.EQ("id", 1)).
		Query()

	var subject string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&subject)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get subject: %w", err)
	}
	return subject, true, nil
}

func (r *profileRepo) SetSubject(ctx context.Context, subject string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(profileTable).
		Columns("id", "subject", "updated_at").
		Values(1, subject, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set subject: %w", err)
	}
	return nil
}

func (r *profileRepo) ClearSubject(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(profileTable).
		Where(entsql.EQ("id", 1)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear subject: %w", err)
	}
	return nil
}
