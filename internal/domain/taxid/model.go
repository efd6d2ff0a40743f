package taxid

import (
	"context"
	"time"

	"github.com/mariiahub/taxcore/internal/types"
)

// TaxIdentifier is the audit record kept for every business tax identifier
// the platform has ever seen. Created on first use, refreshed when the
// registry verdict expires, never deleted.
type TaxIdentifier struct {
	ID string `db:"id" json:"id"`
	// Value is the normalized 10-digit identifier
	Value  string                 `db:"value" json:"value"`
	Status types.IdentifierStatus `db:"status" json:"status"`
	// CheckedAt is when the current verdict was established
	CheckedAt time.Time `db:"checked_at" json:"checked_at"`
	// RegistryName is the counterparty name reported by the registry, if any
	RegistryName string `db:"registry_name" json:"registry_name,omitempty"`
	// RegistryAsOf is the effective date of the cached registry response
	RegistryAsOf *time.Time `db:"registry_as_of" json:"registry_as_of,omitempty"`
	types.BaseModel
}

// New creates an unchecked identifier record for a normalized value
func New(ctx context.Context, value string) *TaxIdentifier {
	return &TaxIdentifier{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TAX_IDENTIFIER),
		Value:     value,
		Status:    types.IdentifierStatusUnchecked,
		CheckedAt: time.Now().UTC(),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

// Expired reports whether the verdict is older than the given TTL
func (t *TaxIdentifier) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(t.CheckedAt) > ttl
}
