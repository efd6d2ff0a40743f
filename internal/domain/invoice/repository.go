package invoice

import (
	"context"

	"github.com/mariiahub/taxcore/internal/types"
)

// Repository persists issued documents. There is no Update or Delete:
// issued invoices are immutable and corrections are separate documents.
type Repository interface {
	// CreateWithLineItems persists the invoice and its lines in one
	// transaction together with the sequence advance
	CreateWithLineItems(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)
	GetByNumber(ctx context.Context, documentNumber string) (*Invoice, error)
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)
}
