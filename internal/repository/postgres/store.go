package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/andresuchdata/devicehub/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Store implements repository.Store on Postgres. Each method runs on its own
// statement unless the Store was handed out by InTx.
type Store struct {
	db *DB
	q  sqlx.ExtContext
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *DB) *Store {
	return &Store{db: db, q: db.DB}
}

// InTx runs fn against a Store bound to a single transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&Store{db: s.db, q: tx})
	})
}

// Ping checks the connection, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) exec(ctx context.Context, what, query string, args ...any) error {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return nil
}

// writeErr wraps a failed insert, turning unique-key violations from either
// driver into domain.ErrDuplicate.
func writeErr(what string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w (%s)", what, domain.ErrDuplicate, pqErr.Constraint)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w (%s)", what, domain.ErrDuplicate, pgErr.ConstraintName)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// transition runs a status UPDATE guarded by the expected current status.
// When no row changes it tells a missing row (domain.ErrNotFound) apart from
// one that has already moved on (conflict). args[0] must be the id.
func (s *Store) transition(ctx context.Context, what, table string, conflict error, query string, args ...any) error {
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := sqlx.GetContext(ctx, s.q, &exists, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, args[0]); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, conflict)
}

func (s *Store) get(ctx context.Context, dest any, what, query string, args ...any) error {
	err := sqlx.GetContext(ctx, s.q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
