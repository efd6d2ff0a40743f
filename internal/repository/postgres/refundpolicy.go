package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mariiahub/taxcore/internal/domain/refundpolicy"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/types"
)

type refundPolicyRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewRefundPolicyRepository(pool *pgxpool.Pool, log *logger.Logger) refundpolicy.Repository {
	return &refundPolicyRepository{pool: pool, log: log}
}

const refundPolicyColumns = `id, service_category, tiers,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *refundPolicyRepository) Create(ctx context.Context, policy *refundpolicy.Policy) error {
	tiers, err := json.Marshal(policy.Tiers)
	if err != nil {
		return ierr.WithError(err).WithHint("Failed to serialize refund tiers").Mark(ierr.ErrSystem)
	}

	query := `
		INSERT INTO refund_policies (` + refundPolicyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.pool.Exec(ctx, query,
		policy.ID, policy.ServiceCategory, tiers,
		policy.TenantID, policy.Status,
		policy.CreatedAt, policy.UpdatedAt, policy.CreatedBy, policy.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create refund policy").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *refundPolicyRepository) Get(ctx context.Context, id string) (*refundpolicy.Policy, error) {
	query := `
		SELECT ` + refundPolicyColumns + ` FROM refund_policies
		WHERE id = $1 AND tenant_id = $2 AND status = $3`
	return r.scanOne(r.pool.QueryRow(ctx, query, id, types.GetTenantID(ctx), types.StatusPublished))
}

// GetForCategory prefers an exact category match and falls back to the
// default schedule, the row with a NULL service_category.
func (r *refundPolicyRepository) GetForCategory(ctx context.Context, serviceCategory string) (*refundpolicy.Policy, error) {
	query := `
		SELECT ` + refundPolicyColumns + ` FROM refund_policies
		WHERE tenant_id = $1 AND status = $2
			AND (service_category = $3 OR service_category IS NULL)
		ORDER BY service_category NULLS LAST
		LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, types.GetTenantID(ctx), types.StatusPublished, serviceCategory))
}

func (r *refundPolicyRepository) Update(ctx context.Context, policy *refundpolicy.Policy) error {
	tiers, err := json.Marshal(policy.Tiers)
	if err != nil {
		return ierr.WithError(err).WithHint("Failed to serialize refund tiers").Mark(ierr.ErrSystem)
	}

	query := `
		UPDATE refund_policies
		SET service_category = $3, tiers = $4, updated_at = $5, updated_by = $6
		WHERE id = $1 AND tenant_id = $2`

	tag, err := r.pool.Exec(ctx, query,
		policy.ID, policy.TenantID,
		policy.ServiceCategory, tiers, policy.UpdatedAt, policy.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update refund policy").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("refund policy not found").
			WithHint("Refund policy not found").
			WithReportableDetails(map[string]any{"id": policy.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *refundPolicyRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE refund_policies
		SET status = $3, updated_at = now()
		WHERE id = $1 AND tenant_id = $2`

	tag, err := r.pool.Exec(ctx, query, id, types.GetTenantID(ctx), types.StatusArchived)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete refund policy").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("refund policy not found").
			WithHint("Refund policy not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *refundPolicyRepository) scanOne(row pgx.Row) (*refundpolicy.Policy, error) {
	var (
		p     refundpolicy.Policy
		tiers []byte
	)
	err := row.Scan(
		&p.ID, &p.ServiceCategory, &tiers,
		&p.TenantID, &p.Status,
		&p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, ierr.NewError("refund policy not found").
			WithHint("Refund policy not found").
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read refund policy").
			Mark(ierr.ErrDatabase)
	}
	if err := json.Unmarshal(tiers, &p.Tiers); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read refund policy").
			Mark(ierr.ErrSystem)
	}
	return &p, nil
}
