package raterule

import (
	"context"

	"github.com/mariiahub/taxcore/internal/types"
)

// Repository defines the interface for rate rule persistence operations
type Repository interface {
	// Create creates a new rate rule
	Create(ctx context.Context, rule *RateRule) error

	// Get retrieves a rate rule by ID
	Get(ctx context.Context, id string) (*RateRule, error)

	// Update updates an existing rate rule
	Update(ctx context.Context, rule *RateRule) error

	// List retrieves rate rules based on filter criteria
	List(ctx context.Context, filter *types.RateRuleFilter) ([]*RateRule, error)

	// Count returns the total count of rate rules based on filter criteria
	Count(ctx context.Context, filter *types.RateRuleFilter) (int, error)

	// Delete archives a rate rule
	Delete(ctx context.Context, rule *RateRule) error
}
