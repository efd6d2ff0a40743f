package testutil

import (
	"context"

	"github.com/mariiahub/taxcore/internal/domain/taxid"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
)

// InMemoryTaxIdentifierStore implements taxid.Repository
type InMemoryTaxIdentifierStore struct {
	*InMemoryStore[*taxid.TaxIdentifier]
}

func NewInMemoryTaxIdentifierStore() *InMemoryTaxIdentifierStore {
	return &InMemoryTaxIdentifierStore{
		InMemoryStore: NewInMemoryStore[*taxid.TaxIdentifier](),
	}
}

func (s *InMemoryTaxIdentifierStore) Create(ctx context.Context, identifier *taxid.TaxIdentifier) error {
	if identifier == nil {
		return ierr.NewError("identifier cannot be nil").
			WithHint("Identifier data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, identifier.ID, identifier)
}

func (s *InMemoryTaxIdentifierStore) Get(ctx context.Context, id string) (*taxid.TaxIdentifier, error) {
	identifier, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("tax identifier not found").
			WithHintf("Tax identifier with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return identifier, nil
}

func (s *InMemoryTaxIdentifierStore) GetByValue(ctx context.Context, value string) (*taxid.TaxIdentifier, error) {
	tenantID := types.GetTenantID(ctx)
	matches, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, item *taxid.TaxIdentifier, _ interface{}) bool {
		return item != nil && item.Value == value && item.TenantID == tenantID
	}, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("tax identifier not found").
			WithHintf("Tax identifier %s was not found", value).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

func (s *InMemoryTaxIdentifierStore) Update(ctx context.Context, identifier *taxid.TaxIdentifier) error {
	if identifier == nil {
		return ierr.NewError("identifier cannot be nil").
			WithHint("Identifier data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, identifier.ID, identifier)
}
