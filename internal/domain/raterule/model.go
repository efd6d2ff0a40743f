package raterule

import (
	"context"
	"time"

	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// RateRule is a configured tax treatment. Predicates left nil act as
// wildcards; specificity (the count of non-wildcard predicates) is part of
// the deterministic tie-break.
type RateRule struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`

	// Predicates; nil matches everything
	ServiceCategory *string                       `db:"service_category" json:"service_category,omitempty"`
	PriceMin        *decimal.Decimal              `db:"price_min" json:"price_min,omitempty"`
	PriceMax        *decimal.Decimal              `db:"price_max" json:"price_max,omitempty"`
	Classification  *types.CustomerClassification `db:"classification" json:"classification,omitempty"`
	CustomerCountry *string                       `db:"customer_country" json:"customer_country,omitempty"`

	// Resulting treatment
	Code       types.RateCode  `db:"code" json:"code"`
	Percentage decimal.Decimal `db:"percentage" json:"percentage"`
	LegalBasis string          `db:"legal_basis" json:"legal_basis"`

	Priority      int        `db:"priority" json:"priority"`
	EffectiveFrom time.Time  `db:"effective_from" json:"effective_from"`
	EffectiveTo   *time.Time `db:"effective_to" json:"effective_to,omitempty"`

	types.BaseModel
}

// New creates a rule with a fresh ID and default base model
func New(ctx context.Context) *RateRule {
	return &RateRule{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RATE_RULE),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

// Matches reports whether every predicate of the rule holds for the sale
// context and the rule's effective window contains the sale date.
func (r *RateRule) Matches(saleCtx types.SaleContext) bool {
	if saleCtx.SaleDate.Before(r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && !saleCtx.SaleDate.Before(*r.EffectiveTo) {
		return false
	}
	if r.ServiceCategory != nil && *r.ServiceCategory != saleCtx.ServiceCategory {
		return false
	}
	if r.Classification != nil && *r.Classification != saleCtx.Classification {
		return false
	}
	if r.CustomerCountry != nil && *r.CustomerCountry != saleCtx.CustomerCountry {
		return false
	}
	if r.PriceMin != nil && saleCtx.Price.LessThan(*r.PriceMin) {
		return false
	}
	if r.PriceMax != nil && saleCtx.Price.GreaterThan(*r.PriceMax) {
		return false
	}
	return true
}

// Specificity counts non-wildcard predicates. Higher is more specific.
func (r *RateRule) Specificity() int {
	score := 0
	if r.ServiceCategory != nil {
		score++
	}
	if r.Classification != nil {
		score++
	}
	if r.CustomerCountry != nil {
		score++
	}
	if r.PriceMin != nil || r.PriceMax != nil {
		score++
	}
	return score
}

// Validate checks the rule's internal consistency
func (r *RateRule) Validate() error {
	if err := r.Code.Validate(); err != nil {
		return err
	}
	if r.Classification != nil {
		if err := r.Classification.Validate(); err != nil {
			return err
		}
	}
	return nil
}
