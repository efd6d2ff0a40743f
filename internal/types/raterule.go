package types

import ierr "github.com/mariiahub/taxcore/internal/errors"

// RateRuleFilter represents the filter options for listing rate rules
type RateRuleFilter struct {
	*QueryFilter
	*TimeRangeFilter

	// rate_rule_ids restricts results to rules with the specified IDs
	RateRuleIDs []string `json:"rate_rule_ids,omitempty" form:"rate_rule_ids"`

	// service_category filters rules scoped to a specific service category
	ServiceCategory string `json:"service_category,omitempty" form:"service_category"`

	// classification filters rules scoped to a customer classification
	Classification CustomerClassification `json:"classification,omitempty" form:"classification"`
}

// NewDefaultRateRuleFilter creates a new rate rule filter with default options
func NewDefaultRateRuleFilter() *RateRuleFilter {
	return &RateRuleFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

// NewNoLimitRateRuleFilter creates a new rate rule filter without pagination
func NewNoLimitRateRuleFilter() *RateRuleFilter {
	return &RateRuleFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *RateRuleFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return ierr.WithError(err).WithHint("invalid query filter").Mark(ierr.ErrValidation)
		}
	}
	if f.TimeRangeFilter != nil {
		if err := f.TimeRangeFilter.Validate(); err != nil {
			return ierr.WithError(err).WithHint("invalid time range").Mark(ierr.ErrValidation)
		}
	}
	if f.Classification != "" {
		if err := f.Classification.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GetLimit implements BaseFilter interface
func (f *RateRuleFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

// GetOffset implements BaseFilter interface
func (f *RateRuleFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

// GetSort implements BaseFilter interface
func (f *RateRuleFilter) GetSort() string {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetSort()
	}
	return f.QueryFilter.GetSort()
}

// GetOrder implements BaseFilter interface
func (f *RateRuleFilter) GetOrder() string {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOrder()
	}
	return f.QueryFilter.GetOrder()
}

// GetStatus implements BaseFilter interface
func (f *RateRuleFilter) GetStatus() string {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetStatus()
	}
	return f.QueryFilter.GetStatus()
}

func (f *RateRuleFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}
