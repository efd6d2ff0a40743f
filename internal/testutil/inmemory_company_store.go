package testutil

import (
	"context"

	"github.com/mariiahub/taxcore/internal/domain/company"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
)

// InMemoryCompanyStore implements company.Repository
type InMemoryCompanyStore struct {
	*InMemoryStore[*company.CompanyProfile]
}

func NewInMemoryCompanyStore() *InMemoryCompanyStore {
	return &InMemoryCompanyStore{
		InMemoryStore: NewInMemoryStore[*company.CompanyProfile](),
	}
}

func (s *InMemoryCompanyStore) Create(ctx context.Context, profile *company.CompanyProfile) error {
	if profile == nil {
		return ierr.NewError("profile cannot be nil").
			WithHint("Company profile data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, profile.ID, profile)
}

func (s *InMemoryCompanyStore) Get(ctx context.Context, id string) (*company.CompanyProfile, error) {
	profile, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("company profile not found").
			WithHintf("Company profile with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return profile, nil
}

func (s *InMemoryCompanyStore) GetLatestByIdentifier(ctx context.Context, identifierValue string) (*company.CompanyProfile, error) {
	matches, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, item *company.CompanyProfile, _ interface{}) bool {
		return item != nil && item.IdentifierValue == identifierValue && item.Status != types.StatusArchived
	}, func(i, j *company.CompanyProfile) bool {
		return i.Version > j.Version
	})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("company profile not found").
			WithHintf("No profile exists for identifier %s", identifierValue).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

func (s *InMemoryCompanyStore) Archive(ctx context.Context, profile *company.CompanyProfile) error {
	if profile == nil {
		return ierr.NewError("profile cannot be nil").
			WithHint("Company profile data is required").
			Mark(ierr.ErrValidation)
	}
	profile.Status = types.StatusArchived
	return s.InMemoryStore.Update(ctx, profile.ID, profile)
}
