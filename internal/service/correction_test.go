package service

import (
	"testing"
	"time"

	"github.com/mariiahub/taxcore/internal/api/dto"
	"github.com/mariiahub/taxcore/internal/domain/refundpolicy"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/testutil"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CorrectionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service        CorrectionService
	invoiceService InvoiceService
}

func TestCorrectionService(t *testing.T) {
	suite.Run(t, new(CorrectionServiceSuite))
}

func (s *CorrectionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.serviceParams()
	taxIDService := NewTaxIdentifierService(params)
	rateService := NewRateRuleService(params)
	s.invoiceService = NewInvoiceService(params, taxIDService, rateService)
	s.service = NewCorrectionService(params)

	_, err := rateService.CreateRule(s.GetContext(), dto.CreateRateRuleRequest{
		Name:          "Standard rate",
		Code:          types.RateCodePercentage,
		Percentage:    lo.ToPtr(decimal.NewFromInt(23)),
		LegalBasis:    "art. 41 ust. 1",
		EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	s.seedRefundPolicy()
}

func (s *CorrectionServiceSuite) serviceParams() ServiceParams {
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

// seedRefundPolicy installs the default schedule: full refund at 48 hours
// notice, half at 24, nothing below.
func (s *CorrectionServiceSuite) seedRefundPolicy() {
	policy := &refundpolicy.Policy{
		ID: types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REFUND_POLICY),
		Tiers: []refundpolicy.Tier{
			{MinHoursBefore: 48, Fraction: decimal.NewFromInt(1)},
			{MinHoursBefore: 24, Fraction: decimal.RequireFromString("0.5")},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().RefundPolicyRepo.Create(s.GetContext(), policy))
}

// issueInvoice issues a 600 net, 738 gross invoice whose sale happens at
// the given time.
func (s *CorrectionServiceSuite) issueInvoice(saleDate time.Time) *dto.InvoiceResponse {
	resp, err := s.invoiceService.IssueInvoice(s.GetContext(), dto.IssueInvoiceRequest{
		ServiceCategory: "consultation",
		SaleDate:        saleDate,
		Buyer: dto.BuyerInfo{
			LegalName:      "Jan Kowalski",
			Classification: types.ClassificationDomesticPerson,
			Country:        "PL",
		},
		Lines: []dto.LineRequest{
			{Description: "Consultation", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(600)},
		},
	})
	s.Require().NoError(err)
	return resp
}

func (s *CorrectionServiceSuite) TestFullReversalWithAmpleNotice() {
	now := time.Now().UTC()
	original := s.issueInvoice(now.Add(72 * time.Hour))

	resp, err := s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID: original.ID,
		Reason:    types.CorrectionReasonCustomerCancellation,
		AsOf:      &now,
	})
	s.NoError(err)

	s.True(resp.NetDelta.Equal(decimal.NewFromInt(-600)))
	s.True(resp.TaxDelta.Equal(decimal.NewFromInt(-138)))
	s.True(resp.TotalDelta.Equal(decimal.NewFromInt(-738)))
	s.True(resp.RefundFraction.Equal(decimal.NewFromInt(1)))

	s.Equal(original.ID, resp.InvoiceID)
	s.Contains(resp.DocumentNumber, "FK/")
	s.Equal(int64(1), resp.SequenceNumber)
	s.NotEmpty(resp.ContentHash)

	s.Require().Len(resp.LineDeltas, 1)
	delta := resp.LineDeltas[0]
	s.Equal(original.LineItems[0].ID, delta.OriginalLineID)
	s.Equal(types.RateCodePercentage, delta.RateCode)
	s.Equal("art. 41 ust. 1", delta.LegalBasis)
}

func (s *CorrectionServiceSuite) TestHalfRefundBetweenThresholds() {
	now := time.Now().UTC()
	original := s.issueInvoice(now.Add(36 * time.Hour))

	resp, err := s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID: original.ID,
		Reason:    types.CorrectionReasonCustomerCancellation,
		AsOf:      &now,
	})
	s.NoError(err)
	s.True(resp.RefundFraction.Equal(decimal.RequireFromString("0.5")))
	s.True(resp.NetDelta.Equal(decimal.NewFromInt(-300)))
	s.True(resp.TaxDelta.Equal(decimal.NewFromInt(-69)))
	s.True(resp.TotalDelta.Equal(decimal.NewFromInt(-369)))
}

func (s *CorrectionServiceSuite) TestShortNoticeRefused() {
	now := time.Now().UTC()
	original := s.issueInvoice(now.Add(12 * time.Hour))

	_, err := s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID: original.ID,
		Reason:    types.CorrectionReasonCustomerCancellation,
		AsOf:      &now,
	})
	s.Error(err)
	s.True(ierr.IsPolicyViolation(err))
}

func (s *CorrectionServiceSuite) TestOverrideReasonIgnoresNotice() {
	now := time.Now().UTC()
	original := s.issueInvoice(now.Add(-2 * time.Hour))

	resp, err := s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID: original.ID,
		Reason:    types.CorrectionReasonProviderCancellation,
		AsOf:      &now,
	})
	s.NoError(err)
	s.True(resp.RefundFraction.Equal(decimal.NewFromInt(1)),
		"a provider cancellation refunds in full regardless of notice")
	s.True(resp.TotalDelta.Equal(decimal.NewFromInt(-738)))
}

func (s *CorrectionServiceSuite) TestRequestedAmountIsCappedByPolicy() {
	now := time.Now().UTC()
	original := s.issueInvoice(now.Add(36 * time.Hour))

	resp, err := s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID:       original.ID,
		Reason:          types.CorrectionReasonCustomerCancellation,
		RequestedAmount: lo.ToPtr(decimal.NewFromInt(738)),
		AsOf:            &now,
	})
	s.NoError(err)
	// the full amount was requested but the 36 hour notice caps it at half
	s.True(resp.RefundFraction.Equal(decimal.RequireFromString("0.5")))
	s.True(resp.TotalDelta.Equal(decimal.NewFromInt(-369)))
}

func (s *CorrectionServiceSuite) TestCumulativeCap() {
	now := time.Now().UTC()
	original := s.issueInvoice(now.Add(72 * time.Hour))

	// first: reverse half by requested amount
	_, err := s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID:       original.ID,
		Reason:          types.CorrectionReasonCustomerCancellation,
		RequestedAmount: lo.ToPtr(decimal.NewFromInt(369)),
		AsOf:            &now,
	})
	s.Require().NoError(err)

	// a full reversal no longer fits
	_, err = s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID: original.ID,
		Reason:    types.CorrectionReasonCustomerCancellation,
		AsOf:      &now,
	})
	s.Error(err)
	s.True(ierr.IsPolicyViolation(err))

	// the remaining half does
	second, err := s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID:       original.ID,
		Reason:          types.CorrectionReasonCustomerCancellation,
		RequestedAmount: lo.ToPtr(decimal.NewFromInt(369)),
		AsOf:            &now,
	})
	s.NoError(err)
	s.True(second.TotalDelta.Equal(decimal.NewFromInt(-369)))

	// and afterwards the invoice is fully reversed
	_, err = s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID:       original.ID,
		Reason:          types.CorrectionReasonCustomerCancellation,
		RequestedAmount: lo.ToPtr(decimal.NewFromInt(1)),
		AsOf:            &now,
	})
	s.Error(err)
	s.True(ierr.IsPolicyViolation(err))
}

func (s *CorrectionServiceSuite) TestUnknownInvoice() {
	_, err := s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID: "inv_does_not_exist",
		Reason:    types.CorrectionReasonCustomerCancellation,
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrUnknownInvoice))
}

func (s *CorrectionServiceSuite) TestProFormaCannotBeCorrected() {
	resp, err := s.invoiceService.IssueInvoice(s.GetContext(), dto.IssueInvoiceRequest{
		DocumentType:    types.DocumentTypeProForma,
		ServiceCategory: "consultation",
		SaleDate:        time.Now().UTC().Add(72 * time.Hour),
		Buyer: dto.BuyerInfo{
			LegalName:      "Jan Kowalski",
			Classification: types.ClassificationDomesticPerson,
			Country:        "PL",
		},
		Lines: []dto.LineRequest{
			{Description: "Consultation", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(600)},
		},
	})
	s.Require().NoError(err)

	_, err = s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID: resp.ID,
		Reason:    types.CorrectionReasonCustomerCancellation,
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrUnknownInvoice))
}

func (s *CorrectionServiceSuite) TestCorrectionsUseTheirOwnSequence() {
	now := time.Now().UTC()
	first := s.issueInvoice(now.Add(72 * time.Hour))
	second := s.issueInvoice(now.Add(72 * time.Hour))

	c1, err := s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID: first.ID,
		Reason:    types.CorrectionReasonCustomerCancellation,
		AsOf:      &now,
	})
	s.Require().NoError(err)
	c2, err := s.service.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID: second.ID,
		Reason:    types.CorrectionReasonCustomerCancellation,
		AsOf:      &now,
	})
	s.Require().NoError(err)

	s.Equal(int64(1), c1.SequenceNumber)
	s.Equal(int64(2), c2.SequenceNumber)
	s.Equal(int64(2), second.SequenceNumber, "invoice numbering is independent of corrections")
}
