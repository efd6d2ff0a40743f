package dto

import (
	"context"
	"time"

	"github.com/mariiahub/taxcore/internal/domain/raterule"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// RateRuleResponse represents the response for rate rule operations
type RateRuleResponse struct {
	*raterule.RateRule `json:",inline"`
}

// ListRateRulesResponse represents the response for listing rate rules
type ListRateRulesResponse struct {
	Items      []*RateRuleResponse       `json:"items"`
	Pagination *types.PaginationResponse `json:"pagination,omitempty"`
}

// CreateRateRuleRequest represents the request to create a rate rule
type CreateRateRuleRequest struct {
	// name is the human-readable name of the rule (required)
	Name string `json:"name" validate:"required"`

	// description is an optional text description of the rule
	Description string `json:"description,omitempty"`

	// service_category restricts the rule to one service category; omit for all
	ServiceCategory *string `json:"service_category,omitempty"`

	// price_min is the inclusive lower bound of the matched price range
	PriceMin *decimal.Decimal `json:"price_min,omitempty"`

	// price_max is the inclusive upper bound of the matched price range
	PriceMax *decimal.Decimal `json:"price_max,omitempty"`

	// classification restricts the rule to one customer classification
	Classification *types.CustomerClassification `json:"classification,omitempty"`

	// customer_country restricts the rule to one ISO-3166 alpha-2 country
	CustomerCountry *string `json:"customer_country,omitempty"`

	// code is the resulting tax treatment (required)
	Code types.RateCode `json:"code" validate:"required"`

	// percentage is the rate value when code is "percentage"
	Percentage *decimal.Decimal `json:"percentage,omitempty"`

	// legal_basis is the statutory citation justifying the treatment (required)
	LegalBasis string `json:"legal_basis" validate:"required"`

	// priority breaks ties between overlapping rules, higher wins
	Priority int `json:"priority"`

	// effective_from is when the rule starts applying to sales (required)
	EffectiveFrom time.Time `json:"effective_from" validate:"required"`

	// effective_to is the exclusive end of the rule's effective window
	EffectiveTo *time.Time `json:"effective_to,omitempty"`
}

// UpdateRateRuleRequest represents the request to update a rate rule. Only
// provided fields are changed; updates never touch already issued invoices.
type UpdateRateRuleRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	LegalBasis  *string          `json:"legal_basis,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	Priority    *int             `json:"priority,omitempty"`
	EffectiveTo *time.Time       `json:"effective_to,omitempty"`
}

// Validate validates the CreateRateRuleRequest
func (r CreateRateRuleRequest) Validate() error {
	if r.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Rate rule name is required").
			Mark(ierr.ErrValidation)
	}

	if err := r.Code.Validate(); err != nil {
		return err
	}

	if r.LegalBasis == "" {
		return ierr.NewError("legal_basis is required").
			WithHint("Every rate rule must cite its legal basis").
			Mark(ierr.ErrValidation)
	}

	if r.EffectiveFrom.IsZero() {
		return ierr.NewError("effective_from is required").
			WithHint("Rate rule effective date is required").
			Mark(ierr.ErrValidation)
	}

	if r.EffectiveTo != nil && !r.EffectiveTo.After(r.EffectiveFrom) {
		return ierr.NewError("effective_to must be after effective_from").
			WithHint("Rate rule effective window must be non empty").
			Mark(ierr.ErrValidation)
	}

	if r.Code == types.RateCodePercentage {
		if r.Percentage == nil {
			return ierr.NewError("percentage is required").
				WithHint("Percentage rules must carry a percentage value").
				Mark(ierr.ErrValidation)
		}
		if r.Percentage.IsNegative() || r.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return ierr.NewError("percentage out of range").
				WithHint("Rate percentage must be in range 0-100").
				Mark(ierr.ErrValidation)
		}
	}

	if r.Classification != nil {
		if err := r.Classification.Validate(); err != nil {
			return err
		}
	}

	if r.CustomerCountry != nil && len(*r.CustomerCountry) != 2 {
		return ierr.NewError("customer_country must be an ISO-3166 alpha-2 code").
			WithHint("Please provide a two letter country code").
			Mark(ierr.ErrValidation)
	}

	if r.PriceMin != nil && r.PriceMax != nil && r.PriceMax.LessThan(*r.PriceMin) {
		return ierr.NewError("price_max must be at least price_min").
			WithHint("Rate rule price range must be non empty").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ToRateRule converts the request to a domain rate rule
func (r CreateRateRuleRequest) ToRateRule(ctx context.Context) (*raterule.RateRule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rule := raterule.New(ctx)
	rule.Name = r.Name
	rule.Description = r.Description
	rule.ServiceCategory = r.ServiceCategory
	rule.PriceMin = r.PriceMin
	rule.PriceMax = r.PriceMax
	rule.Classification = r.Classification
	rule.CustomerCountry = r.CustomerCountry
	rule.Code = r.Code
	if r.Percentage != nil {
		rule.Percentage = *r.Percentage
	}
	rule.LegalBasis = r.LegalBasis
	rule.Priority = r.Priority
	rule.EffectiveFrom = r.EffectiveFrom
	rule.EffectiveTo = r.EffectiveTo
	return rule, nil
}

// Apply copies the provided fields onto an existing rule
func (r UpdateRateRuleRequest) Apply(rule *raterule.RateRule) {
	if r.Name != nil {
		rule.Name = *r.Name
	}
	if r.Description != nil {
		rule.Description = *r.Description
	}
	if r.LegalBasis != nil {
		rule.LegalBasis = *r.LegalBasis
	}
	if r.Percentage != nil {
		rule.Percentage = *r.Percentage
	}
	if r.Priority != nil {
		rule.Priority = *r.Priority
	}
	if r.EffectiveTo != nil {
		rule.EffectiveTo = r.EffectiveTo
	}
	rule.UpdatedAt = time.Now().UTC()
}
