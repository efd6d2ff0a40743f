package testutil

import (
	"context"

	"github.com/mariiahub/taxcore/internal/domain/correction"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/samber/lo"
)

// InMemoryCorrectionStore implements correction.Repository
type InMemoryCorrectionStore struct {
	*InMemoryStore[*correction.CorrectionDocument]
}

func NewInMemoryCorrectionStore() *InMemoryCorrectionStore {
	return &InMemoryCorrectionStore{
		InMemoryStore: NewInMemoryStore[*correction.CorrectionDocument](),
	}
}

// correctionFilterFn implements filtering logic for correction documents
func correctionFilterFn(ctx context.Context, doc *correction.CorrectionDocument, filter interface{}) bool {
	if doc == nil {
		return false
	}

	if tenantID, ok := ctx.Value(types.CtxTenantID).(string); ok {
		if doc.TenantID != tenantID {
			return false
		}
	}

	f, ok := filter.(*types.CorrectionFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.CorrectionIDs) > 0 && !lo.Contains(f.CorrectionIDs, doc.ID) {
		return false
	}
	if f.InvoiceID != "" && doc.InvoiceID != f.InvoiceID {
		return false
	}
	if f.Reason != "" && doc.Reason != f.Reason {
		return false
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && doc.IssueDate.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && !doc.IssueDate.Before(*f.EndTime) {
			return false
		}
	}

	return true
}

func correctionSortFn(i, j *correction.CorrectionDocument) bool {
	if i == nil || j == nil {
		return false
	}
	return i.DocumentNumber < j.DocumentNumber
}

func (s *InMemoryCorrectionStore) CreateWithLineDeltas(ctx context.Context, doc *correction.CorrectionDocument) error {
	if doc == nil {
		return ierr.NewError("correction cannot be nil").
			WithHint("Correction data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, doc.ID, doc)
}

func (s *InMemoryCorrectionStore) Get(ctx context.Context, id string) (*correction.CorrectionDocument, error) {
	doc, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("correction not found").
			WithHintf("Correction with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return doc, nil
}

func (s *InMemoryCorrectionStore) List(ctx context.Context, filter *types.CorrectionFilter) ([]*correction.CorrectionDocument, error) {
	return s.InMemoryStore.List(ctx, filter, correctionFilterFn, correctionSortFn)
}

func (s *InMemoryCorrectionStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*correction.CorrectionDocument, error) {
	filter := types.NewNoLimitCorrectionFilter()
	filter.InvoiceID = invoiceID
	return s.List(ctx, filter)
}

func (s *InMemoryCorrectionStore) Count(ctx context.Context, filter *types.CorrectionFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, correctionFilterFn)
}
