package service

import (
	"testing"
	"time"

	"github.com/mariiahub/taxcore/internal/api/dto"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/testutil"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RateRuleServiceSuite struct {
	testutil.BaseServiceTestSuite
	service RateRuleService
}

func TestRateRuleService(t *testing.T) {
	suite.Run(t, new(RateRuleServiceSuite))
}

func (s *RateRuleServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewRateRuleService(s.serviceParams())
}

func (s *RateRuleServiceSuite) serviceParams() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		Cache:             s.GetCache(),
		RegistryClient:    s.GetRegistry(),
		TaxIdentifierRepo: stores.TaxIdentifierRepo,
		RateRuleRepo:      stores.RateRuleRepo,
		CompanyRepo:       stores.CompanyRepo,
		InvoiceRepo:       stores.InvoiceRepo,
		SequenceRepo:      stores.SequenceRepo,
		CorrectionRepo:    stores.CorrectionRepo,
		RefundPolicyRepo:  stores.RefundPolicyRepo,
		RegisterRepo:      stores.RegisterRepo,
	}
}

func (s *RateRuleServiceSuite) createRule(req dto.CreateRateRuleRequest) *dto.RateRuleResponse {
	resp, err := s.service.CreateRule(s.GetContext(), req)
	s.Require().NoError(err)
	return resp
}

func (s *RateRuleServiceSuite) standardRateRequest() dto.CreateRateRuleRequest {
	return dto.CreateRateRuleRequest{
		Name:          "Standard rate",
		Code:          types.RateCodePercentage,
		Percentage:    lo.ToPtr(decimal.NewFromInt(23)),
		LegalBasis:    "art. 41 ust. 1",
		Priority:      0,
		EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *RateRuleServiceSuite) domesticSale() types.SaleContext {
	return types.SaleContext{
		ServiceCategory: "consultation",
		Price:           decimal.NewFromInt(600),
		Classification:  types.ClassificationDomesticPerson,
		CustomerCountry: "PL",
		SaleDate:        time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func (s *RateRuleServiceSuite) TestResolveStandardRate() {
	created := s.createRule(s.standardRateRequest())

	decision, err := s.service.Resolve(s.GetContext(), s.domesticSale())
	s.NoError(err)
	s.Equal(created.ID, decision.RuleID)
	s.Equal(types.RateCodePercentage, decision.Code)
	s.True(decision.Percentage.Equal(decimal.NewFromInt(23)))
	s.Equal("art. 41 ust. 1", decision.LegalBasis)
	s.Equal(types.RateConfidenceRuleOnly, decision.Confidence)
}

func (s *RateRuleServiceSuite) TestListRulesPagination() {
	s.createRule(s.standardRateRequest())
	reduced := s.standardRateRequest()
	reduced.Name = "Reduced rate"
	reduced.Percentage = lo.ToPtr(decimal.NewFromInt(8))
	reduced.LegalBasis = "art. 41 ust. 2"
	s.createRule(reduced)

	filter := types.NewDefaultRateRuleFilter()
	filter.Limit = lo.ToPtr(1)

	resp, err := s.service.ListRules(s.GetContext(), filter)
	s.NoError(err)
	s.Len(resp.Items, 1)
	s.Require().NotNil(resp.Pagination)
	s.Equal(2, resp.Pagination.Total, "total counts all matches, not just the page")
	s.Equal(1, resp.Pagination.Limit)
	s.Equal(0, resp.Pagination.Offset)
}

func (s *RateRuleServiceSuite) TestResolveNoApplicableRule() {
	_, err := s.service.Resolve(s.GetContext(), s.domesticSale())
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrNoApplicableRule), "an empty rule card must fail, not default")
}

func (s *RateRuleServiceSuite) TestResolveOutsideEffectiveWindow() {
	req := s.standardRateRequest()
	req.EffectiveFrom = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.createRule(req)

	_, err := s.service.Resolve(s.GetContext(), s.domesticSale())
	s.True(ierr.Is(err, ierr.ErrNoApplicableRule))
}

func (s *RateRuleServiceSuite) TestPriorityBeatsSpecificity() {
	specific := s.standardRateRequest()
	specific.Name = "Specific but low priority"
	specific.ServiceCategory = lo.ToPtr("consultation")
	specific.CustomerCountry = lo.ToPtr("PL")
	s.createRule(specific)

	prioritized := s.standardRateRequest()
	prioritized.Name = "Wildcard but prioritized"
	prioritized.Priority = 10
	prioritized.Percentage = lo.ToPtr(decimal.NewFromInt(8))
	winner := s.createRule(prioritized)

	decision, err := s.service.Resolve(s.GetContext(), s.domesticSale())
	s.NoError(err)
	s.Equal(winner.ID, decision.RuleID)
	s.True(decision.Percentage.Equal(decimal.NewFromInt(8)))
}

func (s *RateRuleServiceSuite) TestSpecificityBreaksEqualPriority() {
	wildcard := s.standardRateRequest()
	wildcard.Name = "Wildcard"
	s.createRule(wildcard)

	specific := s.standardRateRequest()
	specific.Name = "Category scoped"
	specific.ServiceCategory = lo.ToPtr("consultation")
	specific.Percentage = lo.ToPtr(decimal.NewFromInt(8))
	winner := s.createRule(specific)

	decision, err := s.service.Resolve(s.GetContext(), s.domesticSale())
	s.NoError(err)
	s.Equal(winner.ID, decision.RuleID)
}

func (s *RateRuleServiceSuite) TestResolveIsDeterministic() {
	a := s.standardRateRequest()
	a.Name = "Rule A"
	s.createRule(a)
	b := s.standardRateRequest()
	b.Name = "Rule B"
	s.createRule(b)

	first, err := s.service.Resolve(s.GetContext(), s.domesticSale())
	s.NoError(err)
	for i := 0; i < 10; i++ {
		again, err := s.service.Resolve(s.GetContext(), s.domesticSale())
		s.NoError(err)
		s.Equal(first.RuleID, again.RuleID, "identical input must pick the identical rule")
	}
}

func (s *RateRuleServiceSuite) euBusinessSale(status types.IdentifierStatus) types.SaleContext {
	saleCtx := s.domesticSale()
	saleCtx.Classification = types.ClassificationEUBusiness
	saleCtx.CustomerCountry = "DE"
	saleCtx.IdentifierStatus = status
	return saleCtx
}

func (s *RateRuleServiceSuite) createReverseChargeCard() {
	rc := s.standardRateRequest()
	rc.Name = "EU B2B reverse charge"
	rc.Code = types.RateCodeReverseCharge
	rc.Percentage = nil
	rc.LegalBasis = "art. 28b"
	rc.Classification = lo.ToPtr(types.ClassificationEUBusiness)
	rc.Priority = 10
	s.createRule(rc)

	s.createRule(s.standardRateRequest())
}

func (s *RateRuleServiceSuite) TestReverseChargeGrantedWhenConfirmed() {
	s.createReverseChargeCard()

	decision, err := s.service.Resolve(s.GetContext(),
		s.euBusinessSale(types.IdentifierStatusRegistryConfirmed))
	s.NoError(err)
	s.Equal(types.RateCodeReverseCharge, decision.Code)
	s.Equal(types.RateConfidenceRegistryConfirmed, decision.Confidence)
	s.False(decision.ReverseChargeDenied)
}

func (s *RateRuleServiceSuite) TestReverseChargeDeniedFallsBack() {
	s.createReverseChargeCard()

	// checksum evidence alone is not enough without the fallback policy
	decision, err := s.service.Resolve(s.GetContext(),
		s.euBusinessSale(types.IdentifierStatusChecksumValid))
	s.NoError(err)
	s.Equal(types.RateCodePercentage, decision.Code)
	s.True(decision.Percentage.Equal(decimal.NewFromInt(23)))
	s.True(decision.ReverseChargeDenied)
	s.Equal(types.RateConfidenceRuleOnly, decision.Confidence)
}

func (s *RateRuleServiceSuite) TestReverseChargeChecksumFallbackAllowed() {
	s.GetConfig().Registry.AllowChecksumFallback = true
	defer func() { s.GetConfig().Registry.AllowChecksumFallback = false }()

	s.createReverseChargeCard()

	decision, err := s.service.Resolve(s.GetContext(),
		s.euBusinessSale(types.IdentifierStatusRegistryUnavailable))
	s.NoError(err)
	s.Equal(types.RateCodeReverseCharge, decision.Code)
	s.Equal(types.RateConfidenceChecksumOnly, decision.Confidence)
}

func (s *RateRuleServiceSuite) TestUpdateRefreshesResolution() {
	created := s.createRule(s.standardRateRequest())

	_, err := s.service.UpdateRule(s.GetContext(), created.ID, dto.UpdateRateRuleRequest{
		Percentage: lo.ToPtr(decimal.NewFromInt(8)),
	})
	s.NoError(err)

	decision, err := s.service.Resolve(s.GetContext(), s.domesticSale())
	s.NoError(err)
	s.True(decision.Percentage.Equal(decimal.NewFromInt(8)))
}

func (s *RateRuleServiceSuite) TestDeleteRemovesFromResolution() {
	created := s.createRule(s.standardRateRequest())

	s.NoError(s.service.DeleteRule(s.GetContext(), created.ID))

	_, err := s.service.Resolve(s.GetContext(), s.domesticSale())
	s.True(ierr.Is(err, ierr.ErrNoApplicableRule))
}
