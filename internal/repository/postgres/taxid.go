package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mariiahub/taxcore/internal/domain/taxid"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/types"
)

type taxIdentifierRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewTaxIdentifierRepository(pool *pgxpool.Pool, log *logger.Logger) taxid.Repository {
	return &taxIdentifierRepository{pool: pool, log: log}
}

const taxIdentifierColumns = `id, value, status, checked_at, registry_name, registry_as_of,
	tenant_id, created_at, updated_at, created_by, updated_by`

func (r *taxIdentifierRepository) Create(ctx context.Context, identifier *taxid.TaxIdentifier) error {
	query := `
		INSERT INTO tax_identifiers (` + taxIdentifierColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		identifier.ID,
		identifier.Value,
		identifier.Status,
		identifier.CheckedAt,
		identifier.RegistryName,
		identifier.RegistryAsOf,
		identifier.TenantID,
		identifier.CreatedAt,
		identifier.UpdatedAt,
		identifier.CreatedBy,
		identifier.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create tax identifier record").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *taxIdentifierRepository) Get(ctx context.Context, id string) (*taxid.TaxIdentifier, error) {
	query := `SELECT ` + taxIdentifierColumns + ` FROM tax_identifiers WHERE id = $1 AND tenant_id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, types.GetTenantID(ctx)), id)
}

func (r *taxIdentifierRepository) GetByValue(ctx context.Context, value string) (*taxid.TaxIdentifier, error) {
	query := `SELECT ` + taxIdentifierColumns + ` FROM tax_identifiers WHERE value = $1 AND tenant_id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, value, types.GetTenantID(ctx)), value)
}

func (r *taxIdentifierRepository) Update(ctx context.Context, identifier *taxid.TaxIdentifier) error {
	query := `
		UPDATE tax_identifiers
		SET status = $3, checked_at = $4, registry_name = $5, registry_as_of = $6,
			updated_at = $7, updated_by = $8
		WHERE id = $1 AND tenant_id = $2`

	tag, err := r.pool.Exec(ctx, query,
		identifier.ID,
		identifier.TenantID,
		identifier.Status,
		identifier.CheckedAt,
		identifier.RegistryName,
		identifier.RegistryAsOf,
		identifier.UpdatedAt,
		identifier.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update tax identifier record").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("tax identifier not found").
			WithHint("Tax identifier record not found").
			WithReportableDetails(map[string]any{"id": identifier.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *taxIdentifierRepository) scanOne(row pgx.Row, key string) (*taxid.TaxIdentifier, error) {
	var t taxid.TaxIdentifier
	err := row.Scan(
		&t.ID,
		&t.Value,
		&t.Status,
		&t.CheckedAt,
		&t.RegistryName,
		&t.RegistryAsOf,
		&t.TenantID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CreatedBy,
		&t.UpdatedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, ierr.NewError("tax identifier not found").
			WithHint("Tax identifier record not found").
			WithReportableDetails(map[string]any{"identifier": key}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read tax identifier record").
			Mark(ierr.ErrDatabase)
	}
	return &t, nil
}
