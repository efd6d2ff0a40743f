package types

import (
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/samber/lo"
)

// IdentifierStatus represents the validation state of a tax identifier.
// The checksum verdict is deterministic and authoritative: registry results
// may refine a checksum-valid identifier but can never contradict a
// checksum-invalid one.
type IdentifierStatus string

const (
	// IdentifierStatusUnchecked indicates no validation has been performed yet
	IdentifierStatusUnchecked IdentifierStatus = "unchecked"
	// IdentifierStatusChecksumValid indicates the identifier passed the weighted checksum
	IdentifierStatusChecksumValid IdentifierStatus = "checksum_valid"
	// IdentifierStatusChecksumInvalid indicates the identifier failed the weighted checksum
	IdentifierStatusChecksumInvalid IdentifierStatus = "checksum_invalid"
	// IdentifierStatusRegistryConfirmed indicates the remote registry confirmed the identifier is active
	IdentifierStatusRegistryConfirmed IdentifierStatus = "registry_confirmed"
	// IdentifierStatusRegistryRejected indicates the remote registry reported the identifier inactive
	IdentifierStatusRegistryRejected IdentifierStatus = "registry_rejected"
	// IdentifierStatusRegistryUnavailable indicates the registry could not be reached;
	// the checksum verdict is preserved alongside with reduced confidence
	IdentifierStatusRegistryUnavailable IdentifierStatus = "registry_unavailable"
)

func (s IdentifierStatus) String() string {
	return string(s)
}

func (s IdentifierStatus) Validate() error {
	allowed := []IdentifierStatus{
		IdentifierStatusUnchecked,
		IdentifierStatusChecksumValid,
		IdentifierStatusChecksumInvalid,
		IdentifierStatusRegistryConfirmed,
		IdentifierStatusRegistryRejected,
		IdentifierStatusRegistryUnavailable,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid identifier status").
			WithHint("Please provide a valid identifier status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ChecksumPassed reports whether the underlying checksum verdict is positive.
// Registry-derived statuses imply a passing checksum since no remote call is
// made for checksum-invalid identifiers.
func (s IdentifierStatus) ChecksumPassed() bool {
	switch s {
	case IdentifierStatusChecksumValid,
		IdentifierStatusRegistryConfirmed,
		IdentifierStatusRegistryRejected,
		IdentifierStatusRegistryUnavailable:
		return true
	default:
		return false
	}
}

// AtLeastChecksumValid reports whether the identifier can back a business
// buyer snapshot on an invoice.
func (s IdentifierStatus) AtLeastChecksumValid() bool {
	return s.ChecksumPassed() && s != IdentifierStatusRegistryRejected
}
