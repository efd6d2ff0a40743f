package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mariiahub/taxcore/internal/domain/register"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/postgres"
	"github.com/mariiahub/taxcore/internal/types"
)

type registerRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewRegisterRepository(pool *pgxpool.Pool, log *logger.Logger) register.Repository {
	return &registerRepository{pool: pool, log: log}
}

const reportRunColumns = `id, run_number, period_start, period_end, entry_count, payload_hash,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

const registerEntryColumns = `id, run_id, period_start, period_end, bracket, direction,
	document_count, net_total, tax_total,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

// ReplaceForPeriod drops any previous run covering the same window and
// writes the new run with its entries in one transaction. Entries are
// stored stamped with the run's ID; the caller's slice is not mutated.
func (r *registerRepository) ReplaceForPeriod(ctx context.Context, run *register.ReportRun, entries []*register.RegisterEntry) error {
	return postgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`DELETE FROM register_entries WHERE tenant_id = $1 AND period_start = $2 AND period_end = $3`,
			run.TenantID, run.PeriodStart, run.PeriodEnd,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to replace register entries").
				Mark(ierr.ErrDatabase)
		}
		_, err = tx.Exec(ctx,
			`DELETE FROM report_runs WHERE tenant_id = $1 AND period_start = $2 AND period_end = $3`,
			run.TenantID, run.PeriodStart, run.PeriodEnd,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to replace report run").
				Mark(ierr.ErrDatabase)
		}

		query := `
			INSERT INTO report_runs (` + reportRunColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

		_, err = tx.Exec(ctx, query,
			run.ID, run.RunNumber, run.PeriodStart, run.PeriodEnd, run.EntryCount, run.PayloadHash,
			run.TenantID, run.Status, run.CreatedAt, run.UpdatedAt, run.CreatedBy, run.UpdatedBy,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create report run").
				Mark(ierr.ErrDatabase)
		}

		for _, entry := range entries {
			query := `
				INSERT INTO register_entries (` + registerEntryColumns + `)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

			_, err := tx.Exec(ctx, query,
				entry.ID, run.ID, entry.PeriodStart, entry.PeriodEnd, entry.Bracket, entry.Direction,
				entry.DocumentCount, entry.NetTotal, entry.TaxTotal,
				run.TenantID, types.StatusPublished, run.CreatedAt, run.UpdatedAt, run.CreatedBy, run.UpdatedBy,
			)
			if err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create register entry").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *registerRepository) GetRun(ctx context.Context, runID string) (*register.ReportRun, error) {
	query := `SELECT ` + reportRunColumns + ` FROM report_runs WHERE id = $1 AND tenant_id = $2`
	return r.scanRun(r.pool.QueryRow(ctx, query, runID, types.GetTenantID(ctx)))
}

func (r *registerRepository) ListEntries(ctx context.Context, periodStart, periodEnd time.Time) ([]*register.RegisterEntry, error) {
	query := `
		SELECT ` + registerEntryColumns + ` FROM register_entries
		WHERE tenant_id = $1 AND period_start = $2 AND period_end = $3
		ORDER BY bracket ASC`

	rows, err := r.pool.Query(ctx, query, types.GetTenantID(ctx), periodStart, periodEnd)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list register entries").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var entries []*register.RegisterEntry
	for rows.Next() {
		var entry register.RegisterEntry
		err := rows.Scan(
			&entry.ID, &entry.RunID, &entry.PeriodStart, &entry.PeriodEnd, &entry.Bracket, &entry.Direction,
			&entry.DocumentCount, &entry.NetTotal, &entry.TaxTotal,
			&entry.TenantID, &entry.Status, &entry.CreatedAt, &entry.UpdatedAt, &entry.CreatedBy, &entry.UpdatedBy,
		)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to read register entry").
				Mark(ierr.ErrDatabase)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list register entries").
			Mark(ierr.ErrDatabase)
	}
	return entries, nil
}

func (r *registerRepository) LatestRun(ctx context.Context, periodStart, periodEnd time.Time) (*register.ReportRun, error) {
	query := `
		SELECT ` + reportRunColumns + ` FROM report_runs
		WHERE tenant_id = $1 AND period_start = $2 AND period_end = $3
		ORDER BY created_at DESC
		LIMIT 1`
	return r.scanRun(r.pool.QueryRow(ctx, query, types.GetTenantID(ctx), periodStart, periodEnd))
}

func (r *registerRepository) scanRun(row pgx.Row) (*register.ReportRun, error) {
	var run register.ReportRun
	err := row.Scan(
		&run.ID, &run.RunNumber, &run.PeriodStart, &run.PeriodEnd, &run.EntryCount, &run.PayloadHash,
		&run.TenantID, &run.Status, &run.CreatedAt, &run.UpdatedAt, &run.CreatedBy, &run.UpdatedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, ierr.NewError("report run not found").
			WithHint("Report run not found").
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read report run").
			Mark(ierr.ErrDatabase)
	}
	return &run, nil
}
