package taxid

import "context"

// Repository defines the interface for tax identifier persistence operations.
// Identifiers are retained for audit and never deleted.
type Repository interface {
	// Create creates a new identifier record
	Create(ctx context.Context, identifier *TaxIdentifier) error

	// Get retrieves an identifier record by ID
	Get(ctx context.Context, id string) (*TaxIdentifier, error)

	// GetByValue retrieves an identifier record by its normalized value
	GetByValue(ctx context.Context, value string) (*TaxIdentifier, error)

	// Update refreshes an existing identifier record
	Update(ctx context.Context, identifier *TaxIdentifier) error
}
