package correction

import (
	"context"

	"github.com/mariiahub/taxcore/internal/types"
)

// Repository persists correction documents. Corrections, like invoices,
// are immutable once issued.
type Repository interface {
	CreateWithLineDeltas(ctx context.Context, doc *CorrectionDocument) error
	Get(ctx context.Context, id string) (*CorrectionDocument, error)
	List(ctx context.Context, filter *types.CorrectionFilter) ([]*CorrectionDocument, error)
	// ListByInvoice returns every correction issued against an invoice,
	// used to enforce the cumulative refund cap
	ListByInvoice(ctx context.Context, invoiceID string) ([]*CorrectionDocument, error)
	Count(ctx context.Context, filter *types.CorrectionFilter) (int, error)
}
