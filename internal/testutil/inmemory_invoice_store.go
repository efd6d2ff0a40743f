package testutil

import (
	"context"

	"github.com/mariiahub/taxcore/internal/domain/invoice"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/samber/lo"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

// invoiceFilterFn implements filtering logic for invoices
func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if inv == nil {
		return false
	}

	if tenantID, ok := ctx.Value(types.CtxTenantID).(string); ok {
		if inv.TenantID != tenantID {
			return false
		}
	}

	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.InvoiceIDs) > 0 && !lo.Contains(f.InvoiceIDs, inv.ID) {
		return false
	}
	if f.DocumentType != "" && inv.DocumentType != f.DocumentType {
		return false
	}
	if f.PeriodKey != "" && inv.PeriodKey != f.PeriodKey {
		return false
	}
	if f.BuyerIdentifier != "" && inv.Buyer.IdentifierValue != f.BuyerIdentifier {
		return false
	}
	if f.ServiceCategory != "" && inv.ServiceCategory != f.ServiceCategory {
		return false
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && inv.IssueDate.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && !inv.IssueDate.Before(*f.EndTime) {
			return false
		}
	}

	return true
}

// invoiceSortFn sorts by document number so listings are stable
func invoiceSortFn(i, j *invoice.Invoice) bool {
	if i == nil || j == nil {
		return false
	}
	return i.DocumentNumber < j.DocumentNumber
}

func (s *InMemoryInvoiceStore) CreateWithLineItems(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, inv.ID, inv)
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return inv, nil
}

func (s *InMemoryInvoiceStore) GetByNumber(ctx context.Context, documentNumber string) (*invoice.Invoice, error) {
	matches, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, item *invoice.Invoice, _ interface{}) bool {
		return item != nil && item.DocumentNumber == documentNumber
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice %s was not found", documentNumber).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	return s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}
