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

const (
	attemptsTable = "attempts"
	messagesTable = "attempt_messages"
)

var attemptColumns = []string{
	"id", "sequence", "question_id", "question_text", "solution", "correct", "subject", "created_at",
}

// attemptRepo implements AttemptRepo on SQLite.
type attemptRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *attemptRepo) Append(ctx context.Context, rec AttemptRecord) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(attemptsTable).
		Columns(attemptColumns...).
		Values(rec.ID, seqNum, rec.QuestionID, rec.QuestionText, rec.Solution,
			rec.Correct, rec.Subject, rec.CreatedAt.UnixMilli()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}

	if err := r.insertMessages(ctx, tx, rec.ID, rec.Messages); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) AppendMessages(ctx context.Context, attemptID string, msgs []MessageRecord) error {
	exists, err := r.exists(ctx, attemptID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("attempt %s: %w", attemptID, ErrNotFound)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := r.insertMessages(ctx, tx, attemptID, msgs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit messages: %w", err)
	}
	return nil
}

// insertMessages draws sequence numbers through tx: the pool has a single
// connection, so sequenceCounter.Next would block while tx holds it.
func (r *attemptRepo) insertMessages(ctx context.Context, tx *sql.Tx, attemptID string, msgs []MessageRecord) error {
	if len(msgs) == 0 {
		return nil
	}

	ins := entsql.Dialect(dialect.SQLite).
		Insert(messagesTable).
		Columns("id", "attempt_id", "sequence", "role", "text", "created_at")
	for _, m := range msgs {
		seqNum, err := r.nextInTx(ctx, tx)
		if err != nil {
			return err
		}
		ins.Values(m.ID, attemptID, seqNum, m.Role, m.Text, m.CreatedAt.UnixMilli())
	}

	query, args := ins.Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert messages: %w", err)
	}
	return nil
}

// nextInTx advances the global sequence inside tx.
func (r *attemptRepo) nextInTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	r.seq.mu.Lock()
	defer r.seq.mu.Unlock()

	var seq int64
	err := tx.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

func (r *attemptRepo) exists(ctx context.Context, id string) (bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(entsql.Table(attemptsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("count attempt: %w", err)
	}
	return n > 0, nil
}

func (r *attemptRepo) Get(ctx context.Context, id string) (*AttemptRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(attemptColumns...).
		From(entsql.Table(attemptsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rec, err := scanAttempt(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}

	msgs, err := r.messages(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.Messages = msgs
	return &rec, nil
}

func (r *attemptRepo) messages(ctx context.Context, attemptID string) ([]MessageRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("id", "role", "text", "created_at").
		From(entsql.Table(messagesTable)).
		Where(entsql.EQ("attempt_id", attemptID)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []MessageRecord
	for rows.Next() {
		var (
			m  MessageRecord
			ms int64
		)
		if err := rows.Scan(&m.ID, &m.Role, &m.Text, &ms); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = time.UnixMilli(ms).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *attemptRepo) List(ctx context.Context, opts QueryOpts) ([]AttemptRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(attemptColumns...).
		From(entsql.Table(attemptsTable)).
		OrderBy(entsql.Desc("sequence"))

	var preds []*entsql.Predicate
	if opts.Subject != "" {
		preds = append(preds, entsql.EQ("subject", opts.Subject))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("created_at", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("created_at", opts.To.UnixMilli()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		rec, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (AttemptRecord, error) {
	var (
		rec AttemptRecord
		ms  int64
	)
	err := row.Scan(&rec.ID, &rec.Sequence, &rec.QuestionID, &rec.QuestionText,
		&rec.Solution, &rec.Correct, &rec.Subject, &ms)
	if err != nil {
		return AttemptRecord{}, err
	}
	rec.CreatedAt = time.UnixMilli(ms).UTC()
	return rec, nil
}
