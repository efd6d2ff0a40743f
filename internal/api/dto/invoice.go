package dto

import (
	"time"

	"github.com/mariiahub/taxcore/internal/domain/invoice"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// LineRequest is one requested invoice line before rate resolution
type LineRequest struct {
	// description is the line's human-readable service description (required)
	Description string `json:"description" validate:"required"`

	// quantity is the billed quantity (required, positive)
	Quantity decimal.Decimal `json:"quantity" validate:"required"`

	// unit_price is the net unit price (required, non-negative)
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

// BuyerInfo is the buyer side of an issuance request. Business buyers must
// supply a tax identifier; private persons must not.
type BuyerInfo struct {
	LegalName      string                       `json:"legal_name" validate:"required"`
	Address        string                       `json:"address"`
	Classification types.CustomerClassification `json:"classification" validate:"required"`
	Country        string                       `json:"country" validate:"required"`

	// identifier is the buyer's raw tax identifier, required for businesses
	Identifier string `json:"identifier,omitempty"`
}

// IssueInvoiceRequest represents the request to build and issue an invoice
type IssueInvoiceRequest struct {
	// document_type defaults to "invoice" when omitted
	DocumentType types.DocumentType `json:"document_type,omitempty"`

	// service_category is the sold service's category (required)
	ServiceCategory string `json:"service_category" validate:"required"`

	// sale_date is when the service was provided (required)
	SaleDate time.Time `json:"sale_date" validate:"required"`

	// due_date is the optional payment due date
	DueDate *time.Time `json:"due_date,omitempty"`

	Buyer BuyerInfo     `json:"buyer" validate:"required"`
	Lines []LineRequest `json:"lines" validate:"required,min=1"`
}

// InvoiceResponse represents the response for invoice operations
type InvoiceResponse struct {
	*invoice.Invoice `json:",inline"`
}

// ListInvoicesResponse represents the response for listing invoices
type ListInvoicesResponse struct {
	Items      []*InvoiceResponse        `json:"items"`
	Pagination *types.PaginationResponse `json:"pagination,omitempty"`
}

// Validate validates the IssueInvoiceRequest
func (r IssueInvoiceRequest) Validate() error {
	if r.DocumentType != "" {
		if err := r.DocumentType.Validate(); err != nil {
			return err
		}
		if r.DocumentType == types.DocumentTypeCorrection {
			return ierr.NewError("corrections cannot be issued directly").
				WithHint("Use the correction endpoint against an existing invoice").
				Mark(ierr.ErrValidation)
		}
	}

	if r.ServiceCategory == "" {
		return ierr.NewError("service_category is required").
			WithHint("Please provide the service category").
			Mark(ierr.ErrValidation)
	}

	if r.SaleDate.IsZero() {
		return ierr.NewError("sale_date is required").
			WithHint("Please provide the sale date").
			Mark(ierr.ErrValidation)
	}

	if err := r.Buyer.Classification.Validate(); err != nil {
		return err
	}
	if r.Buyer.LegalName == "" {
		return ierr.NewError("buyer legal_name is required").
			WithHint("Please provide the buyer's name").
			Mark(ierr.ErrValidation)
	}
	if len(r.Buyer.Country) != 2 {
		return ierr.NewError("buyer country must be an ISO-3166 alpha-2 code").
			WithHint("Please provide a two letter country code").
			Mark(ierr.ErrValidation)
	}

	if len(r.Lines) == 0 {
		return ierr.NewError("at least one line is required").
			WithHint("An invoice must carry at least one line").
			Mark(ierr.ErrValidation)
	}
	for i, line := range r.Lines {
		if line.Description == "" {
			return ierr.NewError("line description is required").
				WithHint("Every invoice line needs a description").
				WithReportableDetails(map[string]any{"line": i}).
				Mark(ierr.ErrValidation)
		}
		if !line.Quantity.IsPositive() {
			return ierr.NewError("line quantity must be positive").
				WithHint("Every invoice line needs a positive quantity").
				WithReportableDetails(map[string]any{"line": i}).
				Mark(ierr.ErrValidation)
		}
		if line.UnitPrice.IsNegative() {
			return ierr.NewError("line unit_price must be non-negative").
				WithHint("Invoice line prices cannot be negative").
				WithReportableDetails(map[string]any{"line": i}).
				Mark(ierr.ErrValidation)
		}
	}

	return nil
}

// GetDocumentType returns the requested document type with the default applied
func (r IssueInvoiceRequest) GetDocumentType() types.DocumentType {
	if r.DocumentType == "" {
		return types.DocumentTypeInvoice
	}
	return r.DocumentType
}
