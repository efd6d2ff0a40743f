package refundpolicy

import "context"

type Repository interface {
	Create(ctx context.Context, policy *Policy) error
	Get(ctx context.Context, id string) (*Policy, error)
	// GetForCategory resolves the effective policy for a service category,
	// falling back to the default schedule when no category specific
	// policy exists
	GetForCategory(ctx context.Context, serviceCategory string) (*Policy, error)
	Update(ctx context.Context, policy *Policy) error
	Delete(ctx context.Context, id string) error
}
