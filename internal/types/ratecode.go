package types

import (
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/samber/lo"
)

// RateCode distinguishes a fixed-percentage tax rate from the special
// treatments that carry no percentage of their own.
type RateCode string

const (
	// RateCodePercentage applies the rule's percentage value
	RateCodePercentage RateCode = "percentage"
	// RateCodeExempt marks a sale exempt from tax with a legal basis
	RateCodeExempt RateCode = "exempt"
	// RateCodeZeroRated marks a 0% rated sale (tax applies, at zero)
	RateCodeZeroRated RateCode = "zero_rated"
	// RateCodeNotApplicable marks a sale outside the scope of the tax
	RateCodeNotApplicable RateCode = "not_applicable"
	// RateCodeReverseCharge shifts the tax liability to the buyer
	RateCodeReverseCharge RateCode = "reverse_charge"
)

func (c RateCode) String() string {
	return string(c)
}

func (c RateCode) Validate() error {
	allowed := []RateCode{
		RateCodePercentage,
		RateCodeExempt,
		RateCodeZeroRated,
		RateCodeNotApplicable,
		RateCodeReverseCharge,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid rate code").
			WithHint("Please provide a valid rate code").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ChargesSellerSideTax reports whether the seller collects tax under this code
func (c RateCode) ChargesSellerSideTax() bool {
	return c == RateCodePercentage
}

// RateConfidence records what evidence justified a rate decision. It is
// persisted on every invoice line for audit.
type RateConfidence string

const (
	// RateConfidenceRegistryConfirmed means the buyer identifier was confirmed remotely
	RateConfidenceRegistryConfirmed RateConfidence = "registry_confirmed"
	// RateConfidenceChecksumOnly means only the local checksum backed the decision
	RateConfidenceChecksumOnly RateConfidence = "checksum_only"
	// RateConfidenceRuleOnly means the decision required no identifier evidence
	RateConfidenceRuleOnly RateConfidence = "rule_only"
)

func (c RateConfidence) String() string {
	return string(c)
}
