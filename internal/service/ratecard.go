package service

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/mariiahub/taxcore/internal/api/dto"
	"github.com/mariiahub/taxcore/internal/domain/raterule"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
)

// RateRuleService owns the rule card: operator CRUD on one side and pure,
// deterministic resolution on the other. The active rule set is published
// as an immutable snapshot swapped atomically on every change, so a
// resolution in progress never observes a half updated card.
type RateRuleService interface {
	CreateRule(ctx context.Context, req dto.CreateRateRuleRequest) (*dto.RateRuleResponse, error)
	GetRule(ctx context.Context, id string) (*dto.RateRuleResponse, error)
	UpdateRule(ctx context.Context, id string, req dto.UpdateRateRuleRequest) (*dto.RateRuleResponse, error)
	DeleteRule(ctx context.Context, id string) error
	ListRules(ctx context.Context, filter *types.RateRuleFilter) (*dto.ListRateRulesResponse, error)

	// Resolve picks exactly one rule for the sale context. An empty match
	// set is a configuration defect and fails with ErrNoApplicableRule,
	// never a silent default.
	Resolve(ctx context.Context, saleCtx types.SaleContext) (*types.RateDecision, error)
}

type rateRuleService struct {
	ServiceParams
	snapshot atomic.Pointer[[]*raterule.RateRule]
}

func NewRateRuleService(params ServiceParams) RateRuleService {
	return &rateRuleService{ServiceParams: params}
}

func (s *rateRuleService) CreateRule(ctx context.Context, req dto.CreateRateRuleRequest) (*dto.RateRuleResponse, error) {
	rule, err := req.ToRateRule(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.RateRuleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}
	if err := s.refreshSnapshot(ctx); err != nil {
		return nil, err
	}
	return &dto.RateRuleResponse{RateRule: rule}, nil
}

func (s *rateRuleService) GetRule(ctx context.Context, id string) (*dto.RateRuleResponse, error) {
	rule, err := s.RateRuleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.RateRuleResponse{RateRule: rule}, nil
}

func (s *rateRuleService) UpdateRule(ctx context.Context, id string, req dto.UpdateRateRuleRequest) (*dto.RateRuleResponse, error) {
	rule, err := s.RateRuleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(rule)
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if err := s.RateRuleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}
	if err := s.refreshSnapshot(ctx); err != nil {
		return nil, err
	}
	return &dto.RateRuleResponse{RateRule: rule}, nil
}

func (s *rateRuleService) DeleteRule(ctx context.Context, id string) error {
	rule, err := s.RateRuleRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.RateRuleRepo.Delete(ctx, rule); err != nil {
		return err
	}
	return s.refreshSnapshot(ctx)
}

func (s *rateRuleService) ListRules(ctx context.Context, filter *types.RateRuleFilter) (*dto.ListRateRulesResponse, error) {
	if filter == nil {
		filter = types.NewDefaultRateRuleFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	rules, err := s.RateRuleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.RateRuleRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.RateRuleResponse, len(rules))
	for i, rule := range rules {
		items[i] = &dto.RateRuleResponse{RateRule: rule}
	}
	return &dto.ListRateRulesResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *rateRuleService) Resolve(ctx context.Context, saleCtx types.SaleContext) (*types.RateDecision, error) {
	if err := saleCtx.Validate(); err != nil {
		return nil, err
	}

	rules, err := s.activeRules(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*raterule.RateRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Matches(saleCtx) {
			matched = append(matched, rule)
		}
	}
	if len(matched) == 0 {
		return nil, noApplicableRuleError(saleCtx)
	}

	best := pickRule(matched)

	if best.Code == types.RateCodeReverseCharge {
		confidence, eligible := s.reverseChargeConfidence(saleCtx)
		if eligible {
			return &types.RateDecision{
				RuleID:     best.ID,
				Code:       types.RateCodeReverseCharge,
				Percentage: best.Percentage,
				LegalBasis: best.LegalBasis,
				Confidence: confidence,
			}, nil
		}

		// Insufficient identifier confidence: fail closed to the standard
		// treatment rather than under collecting tax.
		s.Logger.Warnw("reverse charge denied, identifier confidence insufficient",
			"identifier_status", saleCtx.IdentifierStatus,
			"customer_country", saleCtx.CustomerCountry)

		fallback := make([]*raterule.RateRule, 0, len(matched))
		for _, rule := range matched {
			if rule.Code != types.RateCodeReverseCharge {
				fallback = append(fallback, rule)
			}
		}
		if len(fallback) == 0 {
			return nil, noApplicableRuleError(saleCtx)
		}
		best = pickRule(fallback)
		return &types.RateDecision{
			RuleID:              best.ID,
			Code:                best.Code,
			Percentage:          best.Percentage,
			LegalBasis:          best.LegalBasis,
			Confidence:          types.RateConfidenceRuleOnly,
			ReverseChargeDenied: true,
		}, nil
	}

	return &types.RateDecision{
		RuleID:     best.ID,
		Code:       best.Code,
		Percentage: best.Percentage,
		LegalBasis: best.LegalBasis,
		Confidence: types.RateConfidenceRuleOnly,
	}, nil
}

// reverseChargeConfidence reports whether the buyer identifier's evidence
// is strong enough to grant reverse charge, and which confidence level
// backs it. A remotely confirmed identifier always qualifies; a checksum
// backed one qualifies only when the fallback policy allows it.
func (s *rateRuleService) reverseChargeConfidence(saleCtx types.SaleContext) (types.RateConfidence, bool) {
	switch saleCtx.IdentifierStatus {
	case types.IdentifierStatusRegistryConfirmed:
		return types.RateConfidenceRegistryConfirmed, true
	case types.IdentifierStatusChecksumValid, types.IdentifierStatusRegistryUnavailable:
		if s.Config.Registry.AllowChecksumFallback {
			return types.RateConfidenceChecksumOnly, true
		}
	}
	return "", false
}

// pickRule applies the deterministic tie-break: highest priority, then
// most specific, then most recent effective date, then lowest ID so the
// order is total.
func pickRule(rules []*raterule.RateRule) *raterule.RateRule {
	sorted := make([]*raterule.RateRule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Specificity() != b.Specificity() {
			return a.Specificity() > b.Specificity()
		}
		if !a.EffectiveFrom.Equal(b.EffectiveFrom) {
			return a.EffectiveFrom.After(b.EffectiveFrom)
		}
		return a.ID < b.ID
	})
	return sorted[0]
}

// activeRules returns the published snapshot, loading it on first use
func (s *rateRuleService) activeRules(ctx context.Context) ([]*raterule.RateRule, error) {
	if snapshot := s.snapshot.Load(); snapshot != nil {
		return *snapshot, nil
	}
	if err := s.refreshSnapshot(ctx); err != nil {
		return nil, err
	}
	return *s.snapshot.Load(), nil
}

// refreshSnapshot rebuilds the immutable rule snapshot from storage and
// publishes it with a single atomic swap
func (s *rateRuleService) refreshSnapshot(ctx context.Context) error {
	filter := types.NewNoLimitRateRuleFilter()
	rules, err := s.RateRuleRepo.List(ctx, filter)
	if err != nil {
		return err
	}
	s.snapshot.Store(&rules)
	return nil
}

func noApplicableRuleError(saleCtx types.SaleContext) error {
	return ierr.NewError("no rate rule matches the sale context").
		WithHint("The rate card does not cover this sale; this is a configuration defect").
		WithReportableDetails(map[string]any{
			"service_category": saleCtx.ServiceCategory,
			"classification":   saleCtx.Classification,
			"customer_country": saleCtx.CustomerCountry,
			"sale_date":        saleCtx.SaleDate,
		}).
		Mark(ierr.ErrNoApplicableRule)
}
