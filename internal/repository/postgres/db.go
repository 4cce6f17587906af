package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/devicehub/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

const defaultMaxConcurrentTx = 10

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// NewDB creates a new database connection pool
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return Wrap(db, cfg.MaxConns), nil
}

// Wrap adopts an existing pool, for instance one opened through the pgx
// stdlib driver or a sqlmock connection. maxTx bounds concurrent transactions.
func Wrap(db *sqlx.DB, maxTx int) *DB {
	if maxTx <= 0 {
		maxTx = defaultMaxConcurrentTx
	}
	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(int64(maxTx)),
	}
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}
