package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mariiahub/taxcore/internal/domain/correction"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/postgres"
	"github.com/mariiahub/taxcore/internal/types"
)

type correctionRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewCorrectionRepository(pool *pgxpool.Pool, log *logger.Logger) correction.Repository {
	return &correctionRepository{pool: pool, log: log}
}

const correctionColumns = `id, invoice_id, sequence_number, document_number, period_key,
	reason, reason_note, issue_date, refund_fraction, currency,
	net_delta, tax_delta, total_delta, content_hash,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

const lineDeltaColumns = `id, correction_id, original_line_id, description, net_delta, tax_delta,
	rule_id, rate_code, rate_percentage, legal_basis, rate_confidence,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *correctionRepository) CreateWithLineDeltas(ctx context.Context, doc *correction.CorrectionDocument) error {
	return postgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO corrections (` + correctionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

		_, err := tx.Exec(ctx, query,
			doc.ID, doc.InvoiceID, doc.SequenceNumber, doc.DocumentNumber, doc.PeriodKey,
			doc.Reason, doc.ReasonNote, doc.IssueDate, doc.RefundFraction, doc.Currency,
			doc.NetDelta, doc.TaxDelta, doc.TotalDelta, doc.ContentHash,
			doc.TenantID, doc.Status, doc.CreatedAt, doc.UpdatedAt, doc.CreatedBy, doc.UpdatedBy,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create correction document").
				Mark(ierr.ErrDatabase)
		}

		for _, delta := range doc.LineDeltas {
			query := `
				INSERT INTO correction_line_deltas (` + lineDeltaColumns + `)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
					$12, $13, $14, $15, $16, $17)`

			_, err := tx.Exec(ctx, query,
				delta.ID, delta.CorrectionID, delta.OriginalLineID, delta.Description,
				delta.NetDelta, delta.TaxDelta,
				delta.RuleID, delta.RateCode, delta.RatePercentage, delta.LegalBasis, delta.RateConfidence,
				delta.TenantID, delta.Status, delta.CreatedAt, delta.UpdatedAt, delta.CreatedBy, delta.UpdatedBy,
			)
			if err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create correction line delta").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *correctionRepository) Get(ctx context.Context, id string) (*correction.CorrectionDocument, error) {
	query := `SELECT ` + correctionColumns + ` FROM corrections WHERE id = $1 AND tenant_id = $2`
	doc, err := scanCorrection(r.pool.QueryRow(ctx, query, id, types.GetTenantID(ctx)))
	if err == pgx.ErrNoRows {
		return nil, ierr.NewError("correction not found").
			WithHint("Correction document not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read correction document").
			Mark(ierr.ErrDatabase)
	}
	if err := r.loadLineDeltas(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *correctionRepository) List(ctx context.Context, filter *types.CorrectionFilter) ([]*correction.CorrectionDocument, error) {
	query := `SELECT ` + correctionColumns + ` FROM corrections`
	where, args := correctionConditions(ctx, filter)
	query += where + ` ORDER BY document_number ASC`
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list correction documents").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var docs []*correction.CorrectionDocument
	for rows.Next() {
		doc, err := scanCorrection(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to read correction document").
				Mark(ierr.ErrDatabase)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list correction documents").
			Mark(ierr.ErrDatabase)
	}

	for _, doc := range docs {
		if err := r.loadLineDeltas(ctx, doc); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (r *correctionRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*correction.CorrectionDocument, error) {
	filter := types.NewNoLimitCorrectionFilter()
	filter.InvoiceID = invoiceID
	return r.List(ctx, filter)
}

func (r *correctionRepository) Count(ctx context.Context, filter *types.CorrectionFilter) (int, error) {
	query := `SELECT count(*) FROM corrections`
	where, args := correctionConditions(ctx, filter)
	query += where

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count correction documents").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *correctionRepository) loadLineDeltas(ctx context.Context, doc *correction.CorrectionDocument) error {
	query := `
		SELECT ` + lineDeltaColumns + ` FROM correction_line_deltas
		WHERE correction_id = $1 AND tenant_id = $2
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, doc.ID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read correction line deltas").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	for rows.Next() {
		var delta correction.LineDelta
		err := rows.Scan(
			&delta.ID, &delta.CorrectionID, &delta.OriginalLineID, &delta.Description,
			&delta.NetDelta, &delta.TaxDelta,
			&delta.RuleID, &delta.RateCode, &delta.RatePercentage, &delta.LegalBasis, &delta.RateConfidence,
			&delta.TenantID, &delta.Status, &delta.CreatedAt, &delta.UpdatedAt, &delta.CreatedBy, &delta.UpdatedBy,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to read correction line deltas").
				Mark(ierr.ErrDatabase)
		}
		doc.LineDeltas = append(doc.LineDeltas, &delta)
	}
	return rows.Err()
}

func correctionConditions(ctx context.Context, filter *types.CorrectionFilter) (string, []any) {
	conds := []string{"tenant_id = $1"}
	args := []any{types.GetTenantID(ctx)}

	if len(filter.CorrectionIDs) > 0 {
		args = append(args, filter.CorrectionIDs)
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if filter.InvoiceID != "" {
		args = append(args, filter.InvoiceID)
		conds = append(conds, fmt.Sprintf("invoice_id = $%d", len(args)))
	}
	if filter.Reason != "" {
		args = append(args, filter.Reason)
		conds = append(conds, fmt.Sprintf("reason = $%d", len(args)))
	}
	if filter.TimeRangeFilter != nil {
		if filter.StartTime != nil {
			args = append(args, *filter.StartTime)
			conds = append(conds, fmt.Sprintf("issue_date >= $%d", len(args)))
		}
		if filter.EndTime != nil {
			args = append(args, *filter.EndTime)
			conds = append(conds, fmt.Sprintf("issue_date < $%d", len(args)))
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanCorrection(row pgx.Row) (*correction.CorrectionDocument, error) {
	var doc correction.CorrectionDocument
	err := row.Scan(
		&doc.ID, &doc.InvoiceID, &doc.SequenceNumber, &doc.DocumentNumber, &doc.PeriodKey,
		&doc.Reason, &doc.ReasonNote, &doc.IssueDate, &doc.RefundFraction, &doc.Currency,
		&doc.NetDelta, &doc.TaxDelta, &doc.TotalDelta, &doc.ContentHash,
		&doc.TenantID, &doc.Status, &doc.CreatedAt, &doc.UpdatedAt, &doc.CreatedBy, &doc.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
