// Package postgres owns the connection pool and transaction helper shared
// by the repository layer.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mariiahub/taxcore/internal/config"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
)

// NewPool opens a pgx connection pool from configuration
func NewPool(ctx context.Context, cfg *config.Configuration, log *logger.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.GetDSN())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid postgres configuration").
			Mark(ierr.ErrDatabase)
	}
	poolCfg.MaxConns = cfg.Postgres.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create postgres connection pool").
			Mark(ierr.ErrDatabase)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to reach postgres").
			Mark(ierr.ErrDatabase)
	}

	log.Infow("connected to postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.DBName)
	return pool, nil
}

// TransactionFunc runs inside a database transaction
type TransactionFunc func(tx pgx.Tx) error

// WithTransaction executes fn inside a transaction, committing on nil and
// rolling back on error.
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn TransactionFunc) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to begin transaction").
			Mark(ierr.ErrDatabase)
	}
	defer func() {
		// rollback after commit returns ErrTxClosed, which is fine
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to commit transaction").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
