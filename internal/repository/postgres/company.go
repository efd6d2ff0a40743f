package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mariiahub/taxcore/internal/domain/company"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/types"
)

type companyRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewCompanyRepository(pool *pgxpool.Pool, log *logger.Logger) company.Repository {
	return &companyRepository{pool: pool, log: log}
}

const companyColumns = `id, version, legal_name, address, identifier_value, classification, country,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *companyRepository) Create(ctx context.Context, profile *company.CompanyProfile) error {
	query := `
		INSERT INTO company_profiles (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		profile.ID, profile.Version, profile.LegalName, profile.Address,
		profile.IdentifierValue, profile.Classification, profile.Country,
		profile.TenantID, profile.Status,
		profile.CreatedAt, profile.UpdatedAt, profile.CreatedBy, profile.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create company profile").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *companyRepository) Get(ctx context.Context, id string) (*company.CompanyProfile, error) {
	query := `SELECT ` + companyColumns + ` FROM company_profiles WHERE id = $1 AND tenant_id = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, types.GetTenantID(ctx)))
}

func (r *companyRepository) GetLatestByIdentifier(ctx context.Context, identifierValue string) (*company.CompanyProfile, error) {
	query := `
		SELECT ` + companyColumns + ` FROM company_profiles
		WHERE identifier_value = $1 AND tenant_id = $2 AND status != $3
		ORDER BY version DESC
		LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, identifierValue, types.GetTenantID(ctx), types.StatusDeleted))
}

func (r *companyRepository) Archive(ctx context.Context, profile *company.CompanyProfile) error {
	query := `
		UPDATE company_profiles
		SET status = $3, updated_at = $4, updated_by = $5
		WHERE id = $1 AND tenant_id = $2`

	tag, err := r.pool.Exec(ctx, query,
		profile.ID, profile.TenantID,
		types.StatusArchived, profile.UpdatedAt, profile.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to archive company profile").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("company profile not found").
			WithHint("Company profile not found").
			WithReportableDetails(map[string]any{"id": profile.ID}).
			Mark(ierr.ErrNotFound)
	}
	profile.Status = types.StatusArchived
	return nil
}

func (r *companyRepository) scanOne(row pgx.Row) (*company.CompanyProfile, error) {
	var p company.CompanyProfile
	err := row.Scan(
		&p.ID, &p.Version, &p.LegalName, &p.Address,
		&p.IdentifierValue, &p.Classification, &p.Country,
		&p.TenantID, &p.Status,
		&p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, ierr.NewError("company profile not found").
			WithHint("Company profile not found").
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read company profile").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}
