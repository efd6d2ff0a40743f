package testutil

import (
	"context"

	"github.com/mariiahub/taxcore/internal/domain/raterule"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/samber/lo"
)

// InMemoryRateRuleStore implements raterule.Repository
type InMemoryRateRuleStore struct {
	*InMemoryStore[*raterule.RateRule]
}

func NewInMemoryRateRuleStore() *InMemoryRateRuleStore {
	return &InMemoryRateRuleStore{
		InMemoryStore: NewInMemoryStore[*raterule.RateRule](),
	}
}

// rateRuleFilterFn implements filtering logic for rate rules
func rateRuleFilterFn(ctx context.Context, rule *raterule.RateRule, filter interface{}) bool {
	if rule == nil {
		return false
	}

	if tenantID, ok := ctx.Value(types.CtxTenantID).(string); ok {
		if rule.TenantID != tenantID {
			return false
		}
	}
	if rule.Status == types.StatusDeleted || rule.Status == types.StatusArchived {
		return false
	}

	f, ok := filter.(*types.RateRuleFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.RateRuleIDs) > 0 && !lo.Contains(f.RateRuleIDs, rule.ID) {
		return false
	}
	if f.ServiceCategory != "" {
		if rule.ServiceCategory != nil && *rule.ServiceCategory != f.ServiceCategory {
			return false
		}
	}
	if f.Classification != "" {
		if rule.Classification != nil && *rule.Classification != f.Classification {
			return false
		}
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && rule.CreatedAt.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && rule.CreatedAt.After(*f.EndTime) {
			return false
		}
	}

	return true
}

// rateRuleSortFn sorts by creation time, newest first
func rateRuleSortFn(i, j *raterule.RateRule) bool {
	if i == nil || j == nil {
		return false
	}
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryRateRuleStore) Create(ctx context.Context, rule *raterule.RateRule) error {
	if rule == nil {
		return ierr.NewError("rule cannot be nil").
			WithHint("Rate rule data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, rule.ID, rule)
}

func (s *InMemoryRateRuleStore) Get(ctx context.Context, id string) (*raterule.RateRule, error) {
	rule, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("rate rule not found").
			WithHintf("Rate rule with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return rule, nil
}

func (s *InMemoryRateRuleStore) Update(ctx context.Context, rule *raterule.RateRule) error {
	if rule == nil {
		return ierr.NewError("rule cannot be nil").
			WithHint("Rate rule data is required").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, rule.ID, rule)
}

func (s *InMemoryRateRuleStore) List(ctx context.Context, filter *types.RateRuleFilter) ([]*raterule.RateRule, error) {
	return s.InMemoryStore.List(ctx, filter, rateRuleFilterFn, rateRuleSortFn)
}

func (s *InMemoryRateRuleStore) Count(ctx context.Context, filter *types.RateRuleFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, rateRuleFilterFn)
}

func (s *InMemoryRateRuleStore) Delete(ctx context.Context, rule *raterule.RateRule) error {
	if rule == nil {
		return ierr.NewError("rule cannot be nil").
			WithHint("Rate rule data is required").
			Mark(ierr.ErrValidation)
	}
	rule.Status = types.StatusArchived
	return s.InMemoryStore.Update(ctx, rule.ID, rule)
}
