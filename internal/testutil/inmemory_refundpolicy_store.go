package testutil

import (
	"context"

	"github.com/mariiahub/taxcore/internal/domain/refundpolicy"
	ierr "github.com/mariiahub/taxcore/internal/errors"
)

// InMemoryRefundPolicyStore implements refundpolicy.Repository
type InMemoryRefundPolicyStore struct {
	*InMemoryStore[*refundpolicy.Policy]
}

func NewInMemoryRefundPolicyStore() *InMemoryRefundPolicyStore {
	return &InMemoryRefundPolicyStore{
		InMemoryStore: NewInMemoryStore[*refundpolicy.Policy](),
	}
}

func (s *InMemoryRefundPolicyStore) Create(ctx context.Context, policy *refundpolicy.Policy) error {
	if policy == nil {
		return ierr.NewError("policy cannot be nil").
			WithHint("Refund policy data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, policy.ID, policy)
}

func (s *InMemoryRefundPolicyStore) Get(ctx context.Context, id string) (*refundpolicy.Policy, error) {
	policy, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("refund policy not found").
			WithHintf("Refund policy with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return policy, nil
}

func (s *InMemoryRefundPolicyStore) GetForCategory(ctx context.Context, serviceCategory string) (*refundpolicy.Policy, error) {
	policies, err := s.InMemoryStore.List(ctx, nil, nil, nil)
	if err != nil {
		return nil, err
	}

	var fallback *refundpolicy.Policy
	for _, policy := range policies {
		if policy.ServiceCategory == nil {
			fallback = policy
			continue
		}
		if *policy.ServiceCategory == serviceCategory {
			return policy, nil
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, ierr.NewError("refund policy not found").
		WithHintf("No refund policy covers category %s", serviceCategory).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryRefundPolicyStore) Update(ctx context.Context, policy *refundpolicy.Policy) error {
	if policy == nil {
		return ierr.NewError("policy cannot be nil").
			WithHint("Refund policy data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, policy.ID, policy)
}

func (s *InMemoryRefundPolicyStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}
