package types

import (
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/samber/lo"
)

// CorrectionReason is the reason code attached to a correction document.
// Some reasons override the timing-based refund policy and force a full
// refund regardless of notice.
type CorrectionReason string

const (
	// CorrectionReasonCustomerCancellation is a customer initiated cancellation
	CorrectionReasonCustomerCancellation CorrectionReason = "customer_cancellation"
	// CorrectionReasonProviderCancellation is a seller initiated cancellation
	CorrectionReasonProviderCancellation CorrectionReason = "provider_cancellation"
	// CorrectionReasonDocumentedEmergency is a documented customer emergency
	CorrectionReasonDocumentedEmergency CorrectionReason = "documented_emergency"
	// CorrectionReasonBillingError corrects an erroneous original invoice
	CorrectionReasonBillingError CorrectionReason = "billing_error"
	// CorrectionReasonServiceQuality is a goodwill adjustment for service quality
	CorrectionReasonServiceQuality CorrectionReason = "service_quality"
)

func (r CorrectionReason) String() string {
	return string(r)
}

func (r CorrectionReason) Validate() error {
	allowed := []CorrectionReason{
		CorrectionReasonCustomerCancellation,
		CorrectionReasonProviderCancellation,
		CorrectionReasonDocumentedEmergency,
		CorrectionReasonBillingError,
		CorrectionReasonServiceQuality,
	}
	if !lo.Contains(allowed, r) {
		return ierr.NewError("invalid correction reason").
			WithHint("Please provide a valid correction reason").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// OverridesRefundPolicy reports whether the reason forces a full refund
// regardless of the timing thresholds of the refund policy.
func (r CorrectionReason) OverridesRefundPolicy() bool {
	switch r {
	case CorrectionReasonDocumentedEmergency,
		CorrectionReasonProviderCancellation,
		CorrectionReasonBillingError:
		return true
	default:
		return false
	}
}
