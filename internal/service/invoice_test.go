package service

import (
	"sync"
	"testing"
	"time"

	"github.com/mariiahub/taxcore/internal/api/dto"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/registry"
	"github.com/mariiahub/taxcore/internal/testutil"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     InvoiceService
	rateService RateRuleService
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.serviceParams()
	taxIDService := NewTaxIdentifierService(params)
	s.rateService = NewRateRuleService(params)
	s.service = NewInvoiceService(params, taxIDService, s.rateService)
	s.seedRateCard()
}

func (s *InvoiceServiceSuite) serviceParams() ServiceParams {
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

// seedRateCard installs a standard 23% rule and an EU B2B reverse charge
// rule effective since 2025.
func (s *InvoiceServiceSuite) seedRateCard() {
	effectiveFrom := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.rateService.CreateRule(s.GetContext(), dto.CreateRateRuleRequest{
		Name:          "Standard rate",
		Code:          types.RateCodePercentage,
		Percentage:    lo.ToPtr(decimal.NewFromInt(23)),
		LegalBasis:    "art. 41 ust. 1",
		EffectiveFrom: effectiveFrom,
	})
	s.Require().NoError(err)

	_, err = s.rateService.CreateRule(s.GetContext(), dto.CreateRateRuleRequest{
		Name:           "EU B2B reverse charge",
		Code:           types.RateCodeReverseCharge,
		LegalBasis:     "art. 28b",
		Classification: lo.ToPtr(types.ClassificationEUBusiness),
		Priority:       10,
		EffectiveFrom:  effectiveFrom,
	})
	s.Require().NoError(err)
}

func (s *InvoiceServiceSuite) personRequest() dto.IssueInvoiceRequest {
	return dto.IssueInvoiceRequest{
		ServiceCategory: "consultation",
		SaleDate:        time.Now().UTC().Add(-time.Hour),
		Buyer: dto.BuyerInfo{
			LegalName:      "Jan Kowalski",
			Address:        "ul. Dluga 5, Warszawa",
			Classification: types.ClassificationDomesticPerson,
			Country:        "PL",
		},
		Lines: []dto.LineRequest{
			{
				Description: "Consultation",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.NewFromInt(600),
			},
		},
	}
}

func (s *InvoiceServiceSuite) TestIssueToDomesticPerson() {
	resp, err := s.service.IssueInvoice(s.GetContext(), s.personRequest())
	s.NoError(err)

	s.Equal(types.DocumentTypeInvoice, resp.DocumentType)
	s.Equal(int64(1), resp.SequenceNumber)
	expectedNumber := types.FormatDocumentNumber(types.DocumentTypeInvoice, resp.PeriodKey, 1)
	s.Equal(expectedNumber, resp.DocumentNumber)
	s.Equal("PLN", resp.Currency)

	s.True(resp.Subtotal.Equal(decimal.NewFromInt(600)))
	s.True(resp.TotalTax.Equal(decimal.NewFromInt(138)), "600 at 23%% is 138.00, got %s", resp.TotalTax)
	s.True(resp.Total.Equal(decimal.NewFromInt(738)))

	s.Require().Len(resp.LineItems, 1)
	line := resp.LineItems[0]
	s.Equal(types.RateCodePercentage, line.RateCode)
	s.Equal("art. 41 ust. 1", line.LegalBasis)
	s.NotEmpty(line.RuleID)

	// persons carry no identifier on the snapshot
	s.Empty(resp.Buyer.IdentifierValue)
	s.Equal("Mariia Hub Sp. z o.o.", resp.Seller.LegalName)
	s.NotEmpty(resp.ContentHash)
}

func (s *InvoiceServiceSuite) TestPerLineRounding() {
	req := s.personRequest()
	req.Lines = []dto.LineRequest{
		{Description: "Session A", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("0.125")},
		{Description: "Session B", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("0.125")},
	}

	resp, err := s.service.IssueInvoice(s.GetContext(), req)
	s.NoError(err)

	// each line rounds HALF_UP on its own, so 0.125 becomes 0.13 twice;
	// rounding the aggregate once would give 0.25
	s.True(resp.LineItems[0].Net.Equal(decimal.RequireFromString("0.13")))
	s.True(resp.LineItems[1].Net.Equal(decimal.RequireFromString("0.13")))
	s.True(resp.Subtotal.Equal(decimal.RequireFromString("0.26")))
}

func (s *InvoiceServiceSuite) TestIssueReverseChargeToEUBusiness() {
	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{Active: true})

	req := s.personRequest()
	req.Buyer = dto.BuyerInfo{
		LegalName:      "Beispiel GmbH",
		Address:        "Berliner Str. 1, Berlin",
		Classification: types.ClassificationEUBusiness,
		Country:        "DE",
		Identifier:     "5260250274",
	}

	resp, err := s.service.IssueInvoice(s.GetContext(), req)
	s.NoError(err)

	s.True(resp.TotalTax.IsZero(), "reverse charge shifts the tax to the buyer")
	s.True(resp.Total.Equal(decimal.NewFromInt(600)))

	line := resp.LineItems[0]
	s.Equal(types.RateCodeReverseCharge, line.RateCode)
	s.Equal(types.RateConfidenceRegistryConfirmed, line.RateConfidence)
	s.Equal("art. 28b", line.LegalBasis)

	s.Equal("5260250274", resp.Buyer.IdentifierValue)
	s.NotEmpty(resp.Buyer.ProfileID)
}

func (s *InvoiceServiceSuite) TestBusinessBuyerWithoutIdentifier() {
	req := s.personRequest()
	req.Buyer.Classification = types.ClassificationDomesticBusiness

	_, err := s.service.IssueInvoice(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrMissingBuyerIdentifier))
}

func (s *InvoiceServiceSuite) TestBusinessBuyerRejectedIdentifier() {
	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{Active: false})

	req := s.personRequest()
	req.Buyer.Classification = types.ClassificationDomesticBusiness
	req.Buyer.Identifier = "5260250274"

	_, err := s.service.IssueInvoice(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrMissingBuyerIdentifier))
}

func (s *InvoiceServiceSuite) TestFailedIssuanceDoesNotAdvanceNumbering() {
	first, err := s.service.IssueInvoice(s.GetContext(), s.personRequest())
	s.NoError(err)
	s.Equal(int64(1), first.SequenceNumber)

	bad := s.personRequest()
	bad.ServiceCategory = "unknown_category"
	// use a sale context no rule matches by moving the sale before the card
	bad.SaleDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.service.IssueInvoice(s.GetContext(), bad)
	s.Error(err)

	second, err := s.service.IssueInvoice(s.GetContext(), s.personRequest())
	s.NoError(err)
	s.Equal(int64(2), second.SequenceNumber, "the failed attempt must not consume a number")
}

func (s *InvoiceServiceSuite) TestConcurrentNumberingIsUnique() {
	const workers = 50
	var wg sync.WaitGroup
	numbers := make([]string, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := s.service.IssueInvoice(s.GetContext(), s.personRequest())
			errs[i] = err
			if err == nil {
				numbers[i] = resp.DocumentNumber
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, workers)
	for i := 0; i < workers; i++ {
		s.Require().NoError(errs[i])
		s.NotContains(seen, numbers[i], "document numbers must be unique")
		seen[numbers[i]] = struct{}{}
	}
	s.Len(seen, workers)
}

func (s *InvoiceServiceSuite) TestContentHashIsReproducible() {
	issued, err := s.service.IssueInvoice(s.GetContext(), s.personRequest())
	s.NoError(err)

	fetched, err := s.service.GetInvoice(s.GetContext(), issued.ID)
	s.NoError(err)
	s.Equal(issued.ContentHash, fetched.ContentHash)
	s.Equal(fetched.ContentHash, fetched.ComputeHash(),
		"re-deriving the hash from stored content must reproduce it")
}

func (s *InvoiceServiceSuite) TestCompanyProfileIsVersioned() {
	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{Active: true})

	req := s.personRequest()
	req.Buyer = dto.BuyerInfo{
		LegalName:      "Firma ABC Sp. z o.o.",
		Address:        "ul. Krotka 1, Krakow",
		Classification: types.ClassificationDomesticBusiness,
		Country:        "PL",
		Identifier:     "5260250274",
	}

	first, err := s.service.IssueInvoice(s.GetContext(), req)
	s.NoError(err)

	// unchanged details reuse the profile version
	second, err := s.service.IssueInvoice(s.GetContext(), req)
	s.NoError(err)
	s.Equal(first.Buyer.ProfileID, second.Buyer.ProfileID)

	// changed details version the profile, leaving the old snapshot intact
	req.Buyer.Address = "ul. Nowa 2, Krakow"
	third, err := s.service.IssueInvoice(s.GetContext(), req)
	s.NoError(err)
	s.NotEqual(first.Buyer.ProfileID, third.Buyer.ProfileID)

	original, err := s.service.GetInvoice(s.GetContext(), first.ID)
	s.NoError(err)
	s.Equal("ul. Krotka 1, Krakow", original.Buyer.Address)
}

func (s *InvoiceServiceSuite) TestCorrectionTypeCannotBeIssuedDirectly() {
	req := s.personRequest()
	req.DocumentType = types.DocumentTypeCorrection

	_, err := s.service.IssueInvoice(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestProFormaUsesItsOwnSeries() {
	proForma := s.personRequest()
	proForma.DocumentType = types.DocumentTypeProForma

	pf, err := s.service.IssueInvoice(s.GetContext(), proForma)
	s.NoError(err)
	inv, err := s.service.IssueInvoice(s.GetContext(), s.personRequest())
	s.NoError(err)

	// both are first in their own sequences
	s.Equal(int64(1), pf.SequenceNumber)
	s.Equal(int64(1), inv.SequenceNumber)
	s.Contains(pf.DocumentNumber, "FP/")
	s.Contains(inv.DocumentNumber, "FV/")
}
