package types

import (
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/samber/lo"
)

// CustomerClassification determines the tax treatment of the buyer side of a sale
type CustomerClassification string

const (
	// ClassificationDomesticPerson is a private individual in the seller's country
	ClassificationDomesticPerson CustomerClassification = "domestic_person"
	// ClassificationDomesticBusiness is a registered business in the seller's country
	ClassificationDomesticBusiness CustomerClassification = "domestic_business"
	// ClassificationEUBusiness is a business registered in another EU member state
	ClassificationEUBusiness CustomerClassification = "eu_business"
	// ClassificationNonEUBusiness is a business registered outside the EU
	ClassificationNonEUBusiness CustomerClassification = "non_eu_business"
)

func (c CustomerClassification) String() string {
	return string(c)
}

func (c CustomerClassification) Validate() error {
	allowed := []CustomerClassification{
		ClassificationDomesticPerson,
		ClassificationDomesticBusiness,
		ClassificationEUBusiness,
		ClassificationNonEUBusiness,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid customer classification").
			WithHint("Please provide a valid customer classification").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsBusiness reports whether the classification requires a buyer tax identifier
func (c CustomerClassification) IsBusiness() bool {
	return c != ClassificationDomesticPerson
}
