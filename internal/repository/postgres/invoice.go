package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mariiahub/taxcore/internal/domain/invoice"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/postgres"
	"github.com/mariiahub/taxcore/internal/types"
)

type invoiceRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewInvoiceRepository(pool *pgxpool.Pool, log *logger.Logger) invoice.Repository {
	return &invoiceRepository{pool: pool, log: log}
}

const invoiceColumns = `id, document_type, sequence_number, document_number, period_key,
	issue_date, sale_date, due_date, seller, buyer, service_category, currency,
	subtotal, total_tax, total, content_hash,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

const lineItemColumns = `id, invoice_id, description, quantity, unit_price, net, tax,
	rule_id, rate_code, rate_percentage, legal_basis, rate_confidence, service_category,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

// CreateWithLineItems writes the document header and every line in a single
// transaction so a half-written invoice is never visible.
func (r *invoiceRepository) CreateWithLineItems(ctx context.Context, inv *invoice.Invoice) error {
	seller, err := json.Marshal(inv.Seller)
	if err != nil {
		return ierr.WithError(err).WithHint("Failed to serialize seller snapshot").Mark(ierr.ErrSystem)
	}
	buyer, err := json.Marshal(inv.Buyer)
	if err != nil {
		return ierr.WithError(err).WithHint("Failed to serialize buyer snapshot").Mark(ierr.ErrSystem)
	}

	return postgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO invoices (` + invoiceColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
				$13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`

		_, err := tx.Exec(ctx, query,
			inv.ID, inv.DocumentType, inv.SequenceNumber, inv.DocumentNumber, inv.PeriodKey,
			inv.IssueDate, inv.SaleDate, inv.DueDate, seller, buyer,
			inv.ServiceCategory, inv.Currency,
			inv.Subtotal, inv.TotalTax, inv.Total, inv.ContentHash,
			inv.TenantID, inv.Status, inv.CreatedAt, inv.UpdatedAt, inv.CreatedBy, inv.UpdatedBy,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create invoice").
				Mark(ierr.ErrDatabase)
		}

		for _, line := range inv.LineItems {
			query := `
				INSERT INTO invoice_line_items (` + lineItemColumns + `)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
					$14, $15, $16, $17, $18, $19)`

			_, err := tx.Exec(ctx, query,
				line.ID, line.InvoiceID, line.Description, line.Quantity, line.UnitPrice,
				line.Net, line.Tax,
				line.RuleID, line.RateCode, line.RatePercentage, line.LegalBasis,
				line.RateConfidence, line.ServiceCategory,
				line.TenantID, line.Status, line.CreatedAt, line.UpdatedAt, line.CreatedBy, line.UpdatedBy,
			)
			if err != nil {
				return ierr.WithError(err).
					WithHint("Failed to create invoice line item").
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 AND tenant_id = $2`
	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, id, types.GetTenantID(ctx)))
	if err == pgx.ErrNoRows {
		return nil, ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read invoice").
			Mark(ierr.ErrDatabase)
	}
	if err := r.loadLineItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) GetByNumber(ctx context.Context, documentNumber string) (*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE document_number = $1 AND tenant_id = $2`
	inv, err := scanInvoice(r.pool.QueryRow(ctx, query, documentNumber, types.GetTenantID(ctx)))
	if err == pgx.ErrNoRows {
		return nil, ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]any{"document_number": documentNumber}).
			Mark(ierr.ErrNotFound)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read invoice").
			Mark(ierr.ErrDatabase)
	}
	if err := r.loadLineItems(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	where, args := invoiceConditions(ctx, filter)
	query += where + ` ORDER BY document_number ASC`
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to read invoice").
				Mark(ierr.ErrDatabase)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	for _, inv := range invoices {
		if err := r.loadLineItems(ctx, inv); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	query := `SELECT count(*) FROM invoices`
	where, args := invoiceConditions(ctx, filter)
	query += where

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *invoiceRepository) loadLineItems(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		SELECT ` + lineItemColumns + ` FROM invoice_line_items
		WHERE invoice_id = $1 AND tenant_id = $2
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, inv.ID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read invoice line items").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	for rows.Next() {
		var line invoice.LineItem
		err := rows.Scan(
			&line.ID, &line.InvoiceID, &line.Description, &line.Quantity, &line.UnitPrice,
			&line.Net, &line.Tax,
			&line.RuleID, &line.RateCode, &line.RatePercentage, &line.LegalBasis,
			&line.RateConfidence, &line.ServiceCategory,
			&line.TenantID, &line.Status, &line.CreatedAt, &line.UpdatedAt, &line.CreatedBy, &line.UpdatedBy,
		)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to read invoice line items").
				Mark(ierr.ErrDatabase)
		}
		inv.LineItems = append(inv.LineItems, &line)
	}
	return rows.Err()
}

// invoiceConditions builds the WHERE clause shared by List and Count.
// IssueDate windows are start-inclusive, end-exclusive.
func invoiceConditions(ctx context.Context, filter *types.InvoiceFilter) (string, []any) {
	conds := []string{"tenant_id = $1"}
	args := []any{types.GetTenantID(ctx)}

	if len(filter.InvoiceIDs) > 0 {
		args = append(args, filter.InvoiceIDs)
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if filter.DocumentType != "" {
		args = append(args, filter.DocumentType)
		conds = append(conds, fmt.Sprintf("document_type = $%d", len(args)))
	}
	if filter.PeriodKey != "" {
		args = append(args, filter.PeriodKey)
		conds = append(conds, fmt.Sprintf("period_key = $%d", len(args)))
	}
	if filter.BuyerIdentifier != "" {
		args = append(args, filter.BuyerIdentifier)
		conds = append(conds, fmt.Sprintf("buyer->>'identifier_value' = $%d", len(args)))
	}
	if filter.ServiceCategory != "" {
		args = append(args, filter.ServiceCategory)
		conds = append(conds, fmt.Sprintf("service_category = $%d", len(args)))
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

func scanInvoice(row pgx.Row) (*invoice.Invoice, error) {
	var (
		inv           invoice.Invoice
		seller, buyer []byte
	)
	err := row.Scan(
		&inv.ID, &inv.DocumentType, &inv.SequenceNumber, &inv.DocumentNumber, &inv.PeriodKey,
		&inv.IssueDate, &inv.SaleDate, &inv.DueDate, &seller, &buyer,
		&inv.ServiceCategory, &inv.Currency,
		&inv.Subtotal, &inv.TotalTax, &inv.Total, &inv.ContentHash,
		&inv.TenantID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt, &inv.CreatedBy, &inv.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(seller, &inv.Seller); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(buyer, &inv.Buyer); err != nil {
		return nil, err
	}
	return &inv, nil
}
