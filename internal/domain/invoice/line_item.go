package invoice

import (
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem carries the rate decision it was taxed under. The decision
// fields are persisted verbatim so the document stays auditable even after
// the rule card changes.
type LineItem struct {
	ID          string          `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	// Net is quantity * unit price rounded to the minor unit
	Net decimal.Decimal `json:"net"`
	// Tax is computed and rounded per line, never from the invoice total
	Tax decimal.Decimal `json:"tax"`

	RuleID         string               `json:"rule_id,omitempty"`
	RateCode       types.RateCode       `json:"rate_code"`
	RatePercentage decimal.Decimal      `json:"rate_percentage"`
	LegalBasis     string               `json:"legal_basis,omitempty"`
	RateConfidence types.RateConfidence `json:"rate_confidence"`

	ServiceCategory string `json:"service_category"`

	types.BaseModel
}

func (l *LineItem) Validate() error {
	if l.Quantity.IsZero() {
		return NewValidationError("quantity", "must be non zero")
	}
	if err := l.RateCode.Validate(); err != nil {
		return err
	}
	if l.RateCode == types.RateCodePercentage && l.RatePercentage.IsNegative() {
		return NewValidationError("rate_percentage", "must be non negative")
	}
	if l.RateCode != types.RateCodePercentage && !l.Tax.IsZero() {
		return NewValidationError("tax", "must be zero for non percentage rate codes")
	}
	return nil
}

// NewValidationError reports a field level invariant failure on a document
func NewValidationError(field, message string) error {
	return ierr.NewError("invalid invoice data").
		WithHintf("%s %s", field, message).
		WithReportableDetails(map[string]any{"field": field}).
		Mark(ierr.ErrValidation)
}
