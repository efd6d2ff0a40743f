package dto

import (
	"time"

	"github.com/mariiahub/taxcore/internal/domain/register"
	ierr "github.com/mariiahub/taxcore/internal/errors"
)

// AggregatePeriodRequest represents the request to aggregate a reporting
// period into register entries and an export payload
type AggregatePeriodRequest struct {
	// period_start is the inclusive start of the reporting window (required)
	PeriodStart time.Time `json:"period_start" validate:"required"`

	// period_end is the exclusive end of the reporting window (required)
	PeriodEnd time.Time `json:"period_end" validate:"required"`
}

// AggregatePeriodResponse carries the aggregation result. Payload is the
// rendered export document, reproduced byte for byte on reruns over an
// unchanged document set.
type AggregatePeriodResponse struct {
	Run     *register.ReportRun       `json:"run"`
	Entries []*register.RegisterEntry `json:"entries"`
	Payload []byte                    `json:"payload"`
}

// Validate validates the AggregatePeriodRequest
func (r AggregatePeriodRequest) Validate() error {
	if r.PeriodStart.IsZero() || r.PeriodEnd.IsZero() {
		return ierr.NewError("period_start and period_end are required").
			WithHint("Please provide the reporting window").
			Mark(ierr.ErrValidation)
	}
	if !r.PeriodEnd.After(r.PeriodStart) {
		return ierr.NewError("period_end must be after period_start").
			WithHint("Reporting window must be non empty").
			Mark(ierr.ErrValidation)
	}
	return nil
}
