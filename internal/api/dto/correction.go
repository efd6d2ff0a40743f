package dto

import (
	"time"

	"github.com/mariiahub/taxcore/internal/domain/correction"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// CorrectInvoiceRequest represents the request to issue a correction
// against an existing invoice
type CorrectInvoiceRequest struct {
	// invoice_id references the original invoice (required)
	InvoiceID string `json:"invoice_id" validate:"required"`

	// reason is the correction reason code (required)
	Reason types.CorrectionReason `json:"reason" validate:"required"`

	// reason_note is free text detail for the audit trail
	ReasonNote string `json:"reason_note,omitempty"`

	// requested_amount is the gross amount to refund; omit for the policy
	// computed maximum
	RequestedAmount *decimal.Decimal `json:"requested_amount,omitempty"`

	// as_of is when the cancellation was requested; defaults to now
	AsOf *time.Time `json:"as_of,omitempty"`
}

// CorrectionResponse represents the response for correction operations
type CorrectionResponse struct {
	*correction.CorrectionDocument `json:",inline"`
}

// ListCorrectionsResponse represents the response for listing corrections
type ListCorrectionsResponse struct {
	Items      []*CorrectionResponse     `json:"items"`
	Pagination *types.PaginationResponse `json:"pagination,omitempty"`
}

// Validate validates the CorrectInvoiceRequest
func (r CorrectInvoiceRequest) Validate() error {
	if r.InvoiceID == "" {
		return ierr.NewError("invoice_id is required").
			WithHint("Please reference the invoice to correct").
			Mark(ierr.ErrValidation)
	}
	if err := r.Reason.Validate(); err != nil {
		return err
	}
	if r.RequestedAmount != nil && !r.RequestedAmount.IsPositive() {
		return ierr.NewError("requested_amount must be positive").
			WithHint("Omit requested_amount to refund the policy maximum").
			Mark(ierr.ErrValidation)
	}
	return nil
}
