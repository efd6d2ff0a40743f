package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mariiahub/taxcore/internal/domain/raterule"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/types"
)

type rateRuleRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewRateRuleRepository(pool *pgxpool.Pool, log *logger.Logger) raterule.Repository {
	return &rateRuleRepository{pool: pool, log: log}
}

const rateRuleColumns = `id, name, description, service_category, price_min, price_max,
	classification, customer_country, code, percentage, legal_basis, priority,
	effective_from, effective_to,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *rateRuleRepository) Create(ctx context.Context, rule *raterule.RateRule) error {
	query := `
		INSERT INTO rate_rules (` + rateRuleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err := r.pool.Exec(ctx, query,
		rule.ID, rule.Name, rule.Description,
		rule.ServiceCategory, rule.PriceMin, rule.PriceMax,
		rule.Classification, rule.CustomerCountry,
		rule.Code, rule.Percentage, rule.LegalBasis, rule.Priority,
		rule.EffectiveFrom, rule.EffectiveTo,
		rule.TenantID, rule.Status, rule.CreatedAt, rule.UpdatedAt, rule.CreatedBy, rule.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create rate rule").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *rateRuleRepository) Get(ctx context.Context, id string) (*raterule.RateRule, error) {
	query := `SELECT ` + rateRuleColumns + ` FROM rate_rules WHERE id = $1 AND tenant_id = $2`
	rule, err := scanRateRule(r.pool.QueryRow(ctx, query, id, types.GetTenantID(ctx)))
	if err == pgx.ErrNoRows {
		return nil, ierr.NewError("rate rule not found").
			WithHint("Rate rule not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read rate rule").
			Mark(ierr.ErrDatabase)
	}
	return rule, nil
}

func (r *rateRuleRepository) Update(ctx context.Context, rule *raterule.RateRule) error {
	query := `
		UPDATE rate_rules
		SET name = $3, description = $4, service_category = $5, price_min = $6, price_max = $7,
			classification = $8, customer_country = $9, code = $10, percentage = $11,
			legal_basis = $12, priority = $13, effective_from = $14, effective_to = $15,
			status = $16, updated_at = $17, updated_by = $18
		WHERE id = $1 AND tenant_id = $2`

	tag, err := r.pool.Exec(ctx, query,
		rule.ID, rule.TenantID,
		rule.Name, rule.Description,
		rule.ServiceCategory, rule.PriceMin, rule.PriceMax,
		rule.Classification, rule.CustomerCountry,
		rule.Code, rule.Percentage, rule.LegalBasis, rule.Priority,
		rule.EffectiveFrom, rule.EffectiveTo,
		rule.Status, rule.UpdatedAt, rule.UpdatedBy,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update rate rule").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("rate rule not found").
			WithHint("Rate rule not found").
			WithReportableDetails(map[string]any{"id": rule.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *rateRuleRepository) List(ctx context.Context, filter *types.RateRuleFilter) ([]*raterule.RateRule, error) {
	query := `SELECT ` + rateRuleColumns + ` FROM rate_rules`
	where, args := rateRuleConditions(ctx, filter)
	query += where + ` ORDER BY created_at DESC, id ASC`
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list rate rules").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var rules []*raterule.RateRule
	for rows.Next() {
		rule, err := scanRateRule(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to read rate rule").
				Mark(ierr.ErrDatabase)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list rate rules").
			Mark(ierr.ErrDatabase)
	}
	return rules, nil
}

func (r *rateRuleRepository) Count(ctx context.Context, filter *types.RateRuleFilter) (int, error) {
	query := `SELECT count(*) FROM rate_rules`
	where, args := rateRuleConditions(ctx, filter)
	query += where

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count rate rules").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *rateRuleRepository) Delete(ctx context.Context, rule *raterule.RateRule) error {
	rule.Status = types.StatusArchived
	return r.Update(ctx, rule)
}

// rateRuleConditions builds the WHERE clause shared by List and Count.
// Archived and deleted rules are always excluded.
func rateRuleConditions(ctx context.Context, filter *types.RateRuleFilter) (string, []any) {
	conds := []string{"tenant_id = $1", "status = $2"}
	args := []any{types.GetTenantID(ctx), types.StatusPublished}

	if len(filter.RateRuleIDs) > 0 {
		args = append(args, filter.RateRuleIDs)
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if filter.ServiceCategory != "" {
		args = append(args, filter.ServiceCategory)
		conds = append(conds, fmt.Sprintf("(service_category IS NULL OR service_category = $%d)", len(args)))
	}
	if filter.Classification != "" {
		args = append(args, filter.Classification)
		conds = append(conds, fmt.Sprintf("(classification IS NULL OR classification = $%d)", len(args)))
	}
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			args = append(args, *filter.StartTime)
			conds = append(conds, fmt.Sprintf("effective_from >= $%d", len(args)))
		}
		if filter.EndTime != nil {
			args = append(args, *filter.EndTime)
			conds = append(conds, fmt.Sprintf("effective_from <= $%d", len(args)))
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanRateRule(row pgx.Row) (*raterule.RateRule, error) {
	var rule raterule.RateRule
	err := row.Scan(
		&rule.ID, &rule.Name, &rule.Description,
		&rule.ServiceCategory, &rule.PriceMin, &rule.PriceMax,
		&rule.Classification, &rule.CustomerCountry,
		&rule.Code, &rule.Percentage, &rule.LegalBasis, &rule.Priority,
		&rule.EffectiveFrom, &rule.EffectiveTo,
		&rule.TenantID, &rule.Status, &rule.CreatedAt, &rule.UpdatedAt, &rule.CreatedBy, &rule.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
