package company

import (
	"context"

	"github.com/mariiahub/taxcore/internal/types"
)

// CompanyProfile is a validated business counterparty. Profiles are
// immutable once referenced by an issued invoice: edits create a new
// version and archive the previous one.
type CompanyProfile struct {
	ID              string                       `db:"id" json:"id"`
	Version         int                          `db:"version" json:"version"`
	LegalName       string                       `db:"legal_name" json:"legal_name"`
	Address         string                       `db:"address" json:"address"`
	IdentifierValue string                       `db:"identifier_value" json:"identifier_value"`
	Classification  types.CustomerClassification `db:"classification" json:"classification"`
	Country         string                       `db:"country" json:"country"`
	types.BaseModel
}

// New creates the first version of a profile
func New(ctx context.Context) *CompanyProfile {
	return &CompanyProfile{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COMPANY_PROFILE),
		Version:   1,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

// NewVersion clones the profile into a fresh, higher version with its own ID
func (p *CompanyProfile) NewVersion(ctx context.Context) *CompanyProfile {
	next := *p
	next.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COMPANY_PROFILE)
	next.Version = p.Version + 1
	next.BaseModel = types.GetDefaultBaseModel(ctx)
	return &next
}

// Validate checks the profile's required fields
func (p *CompanyProfile) Validate() error {
	if err := p.Classification.Validate(); err != nil {
		return err
	}
	return nil
}
