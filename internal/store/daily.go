package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const dailyTable = "daily_questions"

type dailyQuestionRepo struct {
	db *sql.DB
}

func (r *dailyQuestionRepo) Get(ctx context.Context, subject, day string) ([]DailyQuestionRecord, bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("id", "text").
		From(entsql.Table(dailyTable)).
		Where(entsql.And(
			entsql.EQ("subject", subject),
			entsql.EQ("day", day),
		)).
		OrderBy("position").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("query daily questions: %w", err)
	}
	defer rows.Close()

	var out []DailyQuestionRecord
	for rows.Next() {
		var q DailyQuestionRecord
		if err := rows.Scan(&q.ID, &q.Text); err != nil {
			return nil, false, fmt.Errorf("scan daily question: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return out, len(out) > 0, nil
}

func (r *dailyQuestionRepo) Put(ctx context.Context, subject, day string, qs []DailyQuestionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	del, delArgs := entsql.Dialect(dialect.SQLite).
		Delete(dailyTable).
		Where(entsql.And(
			entsql.EQ("subject", subject),
			entsql.EQ("day", day),
		)).
		Query()
	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("replace daily questions: %w", err)
	}

	if len(qs) > 0 {
		ins := entsql.Dialect(dialect.SQLite).
			Insert(dailyTable).
			Columns("subject", "day", "position", "id", "text")
		for i, q := range qs {
			ins.Values(subject, day, i, q.ID, q.Text)
		}
		query, args := ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert daily questions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit daily questions: %w", err)
	}
	return nil
}

func (r *dailyQuestionRepo) DeleteOtherDays(ctx context.Context, subject, keepDay string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(dailyTable).
		Where(entsql.And(
			entsql.EQ("subject", subject),
			entsql.NEQ("day", keepDay),
		)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune daily questions: %w", err)
	}
	return nil
}

func (r *dailyQuestionRepo) DeleteAll(ctx context.Context) error {
	query, args := entsql.Dialect(dialect.SQLite).Delete(dailyTable).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear daily questions: %w", err)
	}
	return nil
}
