package dto

import (
	"github.com/mariiahub/taxcore/internal/domain/taxid"
	ierr "github.com/mariiahub/taxcore/internal/errors"
)

// ValidateIdentifierRequest represents the request to validate a tax identifier
type ValidateIdentifierRequest struct {
	// identifier is the raw tax identifier, separators and country prefix allowed
	Identifier string `json:"identifier" validate:"required"`

	// allow_remote permits a registry lookup when the checksum passes
	AllowRemote bool `json:"allow_remote"`
}

// ValidateIdentifierResponse represents the identifier validation verdict
type ValidateIdentifierResponse struct {
	*taxid.TaxIdentifier `json:",inline"`
}

func (r ValidateIdentifierRequest) Validate() error {
	if r.Identifier == "" {
		return ierr.NewError("identifier is required").
			WithHint("Please provide a tax identifier to validate").
			Mark(ierr.ErrValidation)
	}
	return nil
}
