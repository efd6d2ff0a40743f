package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mariiahub/taxcore/internal/domain/invoice"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/types"
)

type sequenceRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewSequenceRepository(pool *pgxpool.Pool, log *logger.Logger) invoice.SequenceRepository {
	return &sequenceRepository{pool: pool, log: log}
}

// Next advances the durable counter with a single atomic upsert. The row
// update takes a row lock, so concurrent callers serialize per
// (tenant, document type, period) and each sees a distinct value.
func (r *sequenceRepository) Next(ctx context.Context, docType types.DocumentType, periodKey string) (int64, error) {
	query := `
		INSERT INTO document_sequences (tenant_id, document_type, period_key, last_value, created_at, updated_at)
		VALUES ($1, $2, $3, 1, now(), now())
		ON CONFLICT (tenant_id, document_type, period_key)
		DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = now()
		RETURNING last_value`

	var value int64
	err := r.pool.QueryRow(ctx, query, types.GetTenantID(ctx), docType, periodKey).Scan(&value)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to allocate document number").
			Mark(ierr.ErrNumberingConflict)
	}
	return value, nil
}

func (r *sequenceRepository) Current(ctx context.Context, docType types.DocumentType, periodKey string) (int64, error) {
	query := `
		SELECT last_value FROM document_sequences
		WHERE tenant_id = $1 AND document_type = $2 AND period_key = $3`

	var value int64
	err := r.pool.QueryRow(ctx, query, types.GetTenantID(ctx), docType, periodKey).Scan(&value)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to read document sequence").
			Mark(ierr.ErrDatabase)
	}
	return value, nil
}
