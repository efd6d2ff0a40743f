package refundpolicy

import (
	"sort"

	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// Tier maps a cancellation notice threshold to the refund fraction allowed
// at or above that notice. MinHoursBefore is the inclusive lower bound.
type Tier struct {
	MinHoursBefore int64           `json:"min_hours_before"`
	Fraction       decimal.Decimal `json:"fraction"`
}

// Policy is the timing-based refund schedule for a service category. A nil
// ServiceCategory policy is the default schedule applied when no category
// specific one exists.
type Policy struct {
	ID              string  `json:"id"`
	ServiceCategory *string `json:"service_category,omitempty"`
	Tiers           []Tier  `json:"tiers"`

	types.BaseModel
}

func (p *Policy) Validate() error {
	if len(p.Tiers) == 0 {
		return ierr.NewError("invalid refund policy").
			WithHint("policy must define at least one tier").
			Mark(ierr.ErrValidation)
	}
	one := decimal.NewFromInt(1)
	for _, tier := range p.Tiers {
		if tier.MinHoursBefore < 0 {
			return ierr.NewError("invalid refund policy").
				WithHint("tier notice threshold must be non negative").
				Mark(ierr.ErrValidation)
		}
		if tier.Fraction.IsNegative() || tier.Fraction.GreaterThan(one) {
			return ierr.NewError("invalid refund policy").
				WithHint("tier fraction must be within [0, 1]").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// MaxFraction returns the refund fraction allowed for the given notice in
// hours. Tiers are matched by the highest threshold the notice clears;
// with no matching tier the refund is zero.
func (p *Policy) MaxFraction(noticeHours int64) decimal.Decimal {
	tiers := make([]Tier, len(p.Tiers))
	copy(tiers, p.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinHoursBefore > tiers[j].MinHoursBefore
	})
	for _, tier := range tiers {
		if noticeHours >= tier.MinHoursBefore {
			return tier.Fraction
		}
	}
	return decimal.Zero
}
