package company

import "context"

// Repository defines the interface for company profile persistence operations
type Repository interface {
	// Create creates a new profile version
	Create(ctx context.Context, profile *CompanyProfile) error

	// Get retrieves a profile version by ID
	Get(ctx context.Context, id string) (*CompanyProfile, error)

	// GetLatestByIdentifier retrieves the newest profile version for a
	// normalized tax identifier
	GetLatestByIdentifier(ctx context.Context, identifierValue string) (*CompanyProfile, error)

	// Archive marks a superseded profile version as archived
	Archive(ctx context.Context, profile *CompanyProfile) error
}
