package types

import (
	"time"

	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/shopspring/decimal"
)

// SaleContext is the input supplied by the booking/payment subsystem for a
// settled sale. It is everything the rate resolver needs to pick a rule.
type SaleContext struct {
	ServiceCategory string                 `json:"service_category"`
	Price           decimal.Decimal        `json:"price"`
	Classification  CustomerClassification `json:"customer_classification"`
	CustomerCountry string                 `json:"customer_country"`
	SaleDate        time.Time              `json:"sale_date"`
	// IdentifierStatus is the validation status of the buyer's tax
	// identifier at resolution time, if the buyer supplied one.
	IdentifierStatus IdentifierStatus `json:"identifier_status,omitempty"`
}

func (c SaleContext) Validate() error {
	if c.ServiceCategory == "" {
		return ierr.NewError("service_category is required").
			WithHint("Sale context must name a service category").
			Mark(ierr.ErrValidation)
	}
	if c.Price.IsNegative() {
		return ierr.NewError("price must be non-negative").
			WithHint("Sale price cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if err := c.Classification.Validate(); err != nil {
		return err
	}
	if len(c.CustomerCountry) != 2 {
		return ierr.NewError("customer_country must be an ISO-3166 alpha-2 code").
			WithHint("Please provide a two letter country code").
			WithReportableDetails(map[string]any{
				"customer_country": c.CustomerCountry,
			}).
			Mark(ierr.ErrValidation)
	}
	if c.SaleDate.IsZero() {
		return ierr.NewError("sale_date is required").
			WithHint("Sale context must carry the sale date").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RateDecision is the resolver's output. Rate, legal basis and confidence
// are all persisted on the invoice line for audit re-derivation.
type RateDecision struct {
	RuleID     string          `json:"rule_id"`
	Code       RateCode        `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
	LegalBasis string          `json:"legal_basis"`
	Confidence RateConfidence  `json:"confidence"`
	// ReverseChargeDenied is set when an EU business buyer was refused
	// reverse-charge treatment because identifier confidence was
	// insufficient; the standard domestic rate applies instead.
	ReverseChargeDenied bool `json:"reverse_charge_denied,omitempty"`
}

// BracketKey groups decisions for register aggregation: special codes keep
// their name, percentage rates use the fixed-decimal percentage value.
func (d RateDecision) BracketKey() string {
	if d.Code == RateCodePercentage {
		return d.Percentage.StringFixed(2)
	}
	return string(d.Code)
}
