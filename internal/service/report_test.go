package service

import (
	"strings"
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

type ReportServiceSuite struct {
	testutil.BaseServiceTestSuite
	service           ReportService
	invoiceService    InvoiceService
	correctionService CorrectionService
}

func TestReportService(t *testing.T) {
	suite.Run(t, new(ReportServiceSuite))
}

func (s *ReportServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.serviceParams()
	taxIDService := NewTaxIdentifierService(params)
	rateService := NewRateRuleService(params)
	s.invoiceService = NewInvoiceService(params, taxIDService, rateService)
	s.correctionService = NewCorrectionService(params)
	s.service = NewReportService(params)

	effectiveFrom := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := rateService.CreateRule(s.GetContext(), dto.CreateRateRuleRequest{
		Name:          "Standard rate",
		Code:          types.RateCodePercentage,
		Percentage:    lo.ToPtr(decimal.NewFromInt(23)),
		LegalBasis:    "art. 41 ust. 1",
		EffectiveFrom: effectiveFrom,
	})
	s.Require().NoError(err)
	_, err = rateService.CreateRule(s.GetContext(), dto.CreateRateRuleRequest{
		Name:            "Exempt medical services",
		Code:            types.RateCodeExempt,
		LegalBasis:      "art. 43 ust. 1 pkt 19",
		ServiceCategory: lo.ToPtr("medical"),
		Priority:        10,
		EffectiveFrom:   effectiveFrom,
	})
	s.Require().NoError(err)
}

func (s *ReportServiceSuite) serviceParams() ServiceParams {
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

func (s *ReportServiceSuite) issueInvoice(category string, price int64) *dto.InvoiceResponse {
	resp, err := s.invoiceService.IssueInvoice(s.GetContext(), dto.IssueInvoiceRequest{
		ServiceCategory: category,
		SaleDate:        time.Now().UTC(),
		Buyer: dto.BuyerInfo{
			LegalName:      "Jan Kowalski",
			Classification: types.ClassificationDomesticPerson,
			Country:        "PL",
		},
		Lines: []dto.LineRequest{
			{Description: "Service", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(price)},
		},
	})
	s.Require().NoError(err)
	return resp
}

func (s *ReportServiceSuite) periodRequest() dto.AggregatePeriodRequest {
	now := time.Now().UTC()
	return dto.AggregatePeriodRequest{
		PeriodStart: now.Add(-time.Hour),
		PeriodEnd:   now.Add(time.Hour),
	}
}

func (s *ReportServiceSuite) TestAggregateGroupsByBracket() {
	s.issueInvoice("consultation", 600)
	s.issueInvoice("consultation", 400)
	s.issueInvoice("medical", 200)

	resp, err := s.service.Aggregate(s.GetContext(), s.periodRequest())
	s.NoError(err)

	s.Require().Len(resp.Entries, 2)

	// entries are sorted by bracket key
	standard := resp.Entries[0]
	s.Equal("23.00", standard.Bracket)
	s.Equal(2, standard.DocumentCount)
	s.True(standard.NetTotal.Equal(decimal.NewFromInt(1000)))
	s.True(standard.TaxTotal.Equal(decimal.NewFromInt(230)))

	exempt := resp.Entries[1]
	s.Equal("exempt", exempt.Bracket)
	s.Equal(1, exempt.DocumentCount)
	s.True(exempt.NetTotal.Equal(decimal.NewFromInt(200)))
	s.True(exempt.TaxTotal.IsZero())

	s.Equal(2, resp.Run.EntryCount)
	s.NotEmpty(resp.Run.PayloadHash)
	s.NotEmpty(resp.Payload)
}

func (s *ReportServiceSuite) TestRerunIsByteIdentical() {
	s.issueInvoice("consultation", 600)
	s.issueInvoice("medical", 200)

	req := s.periodRequest()
	first, err := s.service.Aggregate(s.GetContext(), req)
	s.Require().NoError(err)
	second, err := s.service.Aggregate(s.GetContext(), req)
	s.Require().NoError(err)

	s.Equal(first.Payload, second.Payload, "rerun over unchanged documents must reproduce the payload")
	s.Equal(first.Run.PayloadHash, second.Run.PayloadHash)
	s.NotEqual(first.Run.ID, second.Run.ID, "each run keeps its own identity")

	s.Require().Equal(len(first.Entries), len(second.Entries))
	for i := range first.Entries {
		s.Equal(first.Entries[i].ID, second.Entries[i].ID, "entry IDs derive from content, not the run")
	}
}

func (s *ReportServiceSuite) TestRerunReplacesRegister() {
	s.issueInvoice("consultation", 600)

	req := s.periodRequest()
	first, err := s.service.Aggregate(s.GetContext(), req)
	s.Require().NoError(err)

	s.issueInvoice("consultation", 400)
	second, err := s.service.Aggregate(s.GetContext(), req)
	s.Require().NoError(err)

	entries, err := s.GetStores().RegisterRepo.ListEntries(s.GetContext(), req.PeriodStart, req.PeriodEnd)
	s.NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(second.Run.ID, entries[0].RunID, "stored entries belong to the latest run")
	s.True(entries[0].NetTotal.Equal(decimal.NewFromInt(1000)))

	_, err = s.GetStores().RegisterRepo.GetRun(s.GetContext(), first.Run.ID)
	s.Error(err, "the superseded run is dropped with its entries")
}

func (s *ReportServiceSuite) TestCorrectionsNetOut() {
	now := time.Now().UTC()
	original := s.issueInvoice("consultation", 600)

	_, err := s.correctionService.CorrectInvoice(s.GetContext(), dto.CorrectInvoiceRequest{
		InvoiceID: original.ID,
		Reason:    types.CorrectionReasonProviderCancellation,
		AsOf:      &now,
	})
	s.Require().NoError(err)

	resp, err := s.service.Aggregate(s.GetContext(), s.periodRequest())
	s.NoError(err)

	s.Require().Len(resp.Entries, 1)
	entry := resp.Entries[0]
	s.Equal("23.00", entry.Bracket)
	s.Equal(2, entry.DocumentCount, "the invoice and its correction both count")
	s.True(entry.NetTotal.IsZero(), "a full reversal nets to zero")
	s.True(entry.TaxTotal.IsZero())
}

func (s *ReportServiceSuite) TestProFormaStaysOutOfRegister() {
	_, err := s.invoiceService.IssueInvoice(s.GetContext(), dto.IssueInvoiceRequest{
		DocumentType:    types.DocumentTypeProForma,
		ServiceCategory: "consultation",
		SaleDate:        time.Now().UTC(),
		Buyer: dto.BuyerInfo{
			LegalName:      "Jan Kowalski",
			Classification: types.ClassificationDomesticPerson,
			Country:        "PL",
		},
		Lines: []dto.LineRequest{
			{Description: "Offer", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(600)},
		},
	})
	s.Require().NoError(err)

	resp, err := s.service.Aggregate(s.GetContext(), s.periodRequest())
	s.NoError(err)
	s.Empty(resp.Entries)
	s.Equal(0, resp.Run.EntryCount)
}

func (s *ReportServiceSuite) TestIncompletePeriodRefused() {
	issued := s.issueInvoice("consultation", 600)

	// corrupt the stored document with a placeholder rate decision
	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), issued.ID)
	s.Require().NoError(err)
	stored.LineItems[0].LegalBasis = ""

	_, err = s.service.Aggregate(s.GetContext(), s.periodRequest())
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrIncompletePeriod))
}

func (s *ReportServiceSuite) TestDocumentsOutsideWindowIgnored() {
	s.issueInvoice("consultation", 600)

	now := time.Now().UTC()
	resp, err := s.service.Aggregate(s.GetContext(), dto.AggregatePeriodRequest{
		PeriodStart: now.Add(-48 * time.Hour),
		PeriodEnd:   now.Add(-24 * time.Hour),
	})
	s.NoError(err)
	s.Empty(resp.Entries)
}

func (s *ReportServiceSuite) TestPayloadShape() {
	s.issueInvoice("consultation", 600)

	resp, err := s.service.Aggregate(s.GetContext(), s.periodRequest())
	s.NoError(err)

	payload := string(resp.Payload)
	s.True(strings.HasPrefix(payload, "<?xml"), "export must carry the XML declaration")
	s.Contains(payload, "<TaxRegister")
	s.Contains(payload, "<Currency>PLN</Currency>")
	s.Contains(payload, s.GetConfig().Seller.TaxIdentifier)
	s.Contains(payload, "FV/")
	s.NotContains(payload, "GeneratedAt", "the payload must not embed a generation timestamp")
}
