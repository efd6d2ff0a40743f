package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/mariiahub/taxcore/internal/api/dto"
	"github.com/mariiahub/taxcore/internal/domain/correction"
	"github.com/mariiahub/taxcore/internal/domain/invoice"
	"github.com/mariiahub/taxcore/internal/domain/register"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/export"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// ReportService aggregates a reporting period into register entries and
// the authority's export payload. Aggregation is a pure function of the
// period's documents: rerunning it over an unchanged document set must
// reproduce identical entries and identical payload bytes.
type ReportService interface {
	Aggregate(ctx context.Context, req dto.AggregatePeriodRequest) (*dto.AggregatePeriodResponse, error)
}

type reportService struct {
	ServiceParams
}

func NewReportService(params ServiceParams) ReportService {
	return &reportService{ServiceParams: params}
}

type bracketAccumulator struct {
	documents map[string]struct{}
	net       decimal.Decimal
	tax       decimal.Decimal
}

func (s *reportService) Aggregate(ctx context.Context, req dto.AggregatePeriodRequest) (*dto.AggregatePeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	invoices, corrections, err := s.loadPeriod(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.checkComplete(invoices, corrections); err != nil {
		return nil, err
	}

	brackets := map[string]*bracketAccumulator{}
	accumulate := func(docID, bracket string, net, tax decimal.Decimal) {
		acc, ok := brackets[bracket]
		if !ok {
			acc = &bracketAccumulator{
				documents: map[string]struct{}{},
				net:       decimal.Zero,
				tax:       decimal.Zero,
			}
			brackets[bracket] = acc
		}
		acc.documents[docID] = struct{}{}
		acc.net = acc.net.Add(net)
		acc.tax = acc.tax.Add(tax)
	}

	docRows := make([]export.DocumentRow, 0, len(invoices)+len(corrections))
	for _, inv := range invoices {
		for _, line := range inv.LineItems {
			accumulate(inv.ID, lineBracket(line.RateCode, line.RatePercentage), line.Net, line.Tax)
		}
		docRows = append(docRows, export.DocumentRow{
			Number:         inv.DocumentNumber,
			Type:           inv.DocumentType.String(),
			IssueDate:      inv.IssueDate,
			Counterparty:   inv.Buyer.LegalName,
			CounterpartyID: inv.Buyer.IdentifierValue,
			Net:            inv.Subtotal,
			Tax:            inv.TotalTax,
		})
	}

	for _, doc := range corrections {
		original, err := s.InvoiceRepo.Get(ctx, doc.InvoiceID)
		if err != nil {
			return nil, err
		}
		for _, delta := range doc.LineDeltas {
			accumulate(doc.ID, lineBracket(delta.RateCode, delta.RatePercentage), delta.NetDelta, delta.TaxDelta)
		}
		docRows = append(docRows, export.DocumentRow{
			Number:         doc.DocumentNumber,
			Type:           types.DocumentTypeCorrection.String(),
			IssueDate:      doc.IssueDate,
			Counterparty:   original.Buyer.LegalName,
			CounterpartyID: original.Buyer.IdentifierValue,
			Net:            doc.NetDelta,
			Tax:            doc.TaxDelta,
		})
	}

	entries := s.buildEntries(req, brackets)

	payload := &export.Payload{
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Currency:    s.Config.Seller.Currency,
		Entity: export.EntityInfo{
			LegalName:     s.Config.Seller.LegalName,
			TaxIdentifier: s.Config.Seller.TaxIdentifier,
			Address:       s.Config.Seller.Address,
			Country:       s.Config.Seller.Country,
		},
		Documents: docRows,
	}
	for _, entry := range entries {
		payload.Brackets = append(payload.Brackets, export.BracketRow{
			Code:          entry.Bracket,
			DocumentCount: entry.DocumentCount,
			Net:           entry.NetTotal,
			Tax:           entry.TaxTotal,
		})
	}

	rendered, err := payload.Render()
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(rendered)
	run := &register.ReportRun{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REPORT_RUN),
		RunNumber:   types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_REPORT_RUN),
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		EntryCount:  len(entries),
		PayloadHash: hex.EncodeToString(digest[:]),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}

	if err := s.RegisterRepo.ReplaceForPeriod(ctx, run, entries); err != nil {
		return nil, err
	}

	s.Logger.Infow("period aggregated",
		"run_id", run.ID,
		"period_start", req.PeriodStart,
		"period_end", req.PeriodEnd,
		"entries", len(entries),
		"documents", len(docRows))

	return &dto.AggregatePeriodResponse{
		Run:     run,
		Entries: entries,
		Payload: rendered,
	}, nil
}

// loadPeriod reads all documents issued within [periodStart, periodEnd).
// Pro forma documents are not tax documents and stay out of the register.
func (s *reportService) loadPeriod(ctx context.Context, req dto.AggregatePeriodRequest) ([]*invoice.Invoice, []*correction.CorrectionDocument, error) {
	invFilter := types.NewNoLimitInvoiceFilter()
	invFilter.TimeRangeFilter = &types.TimeRangeFilter{
		StartTime: &req.PeriodStart,
		EndTime:   &req.PeriodEnd,
	}
	invoices, err := s.InvoiceRepo.List(ctx, invFilter)
	if err != nil {
		return nil, nil, err
	}

	taxDocs := make([]*invoice.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.DocumentType == types.DocumentTypeProForma {
			continue
		}
		taxDocs = append(taxDocs, inv)
	}

	corrFilter := types.NewNoLimitCorrectionFilter()
	corrFilter.TimeRangeFilter = &types.TimeRangeFilter{
		StartTime: &req.PeriodStart,
		EndTime:   &req.PeriodEnd,
	}
	corrections, err := s.CorrectionRepo.List(ctx, corrFilter)
	if err != nil {
		return nil, nil, err
	}

	return taxDocs, corrections, nil
}

// checkComplete refuses to aggregate a period containing a line whose rate
// decision was never fully resolved. Submitting such a period would report
// inconsistent data to the authority.
func (s *reportService) checkComplete(invoices []*invoice.Invoice, corrections []*correction.CorrectionDocument) error {
	incomplete := func(docNumber string) error {
		return ierr.NewError("period contains an unresolved rate decision").
			WithHint("A document carries a placeholder legal basis; resolve it before reporting").
			WithReportableDetails(map[string]any{
				"document_number": docNumber,
			}).
			Mark(ierr.ErrIncompletePeriod)
	}

	for _, inv := range invoices {
		for _, line := range inv.LineItems {
			if line.LegalBasis == "" || line.RateCode.Validate() != nil {
				return incomplete(inv.DocumentNumber)
			}
		}
	}
	for _, doc := range corrections {
		for _, delta := range doc.LineDeltas {
			if delta.LegalBasis == "" || delta.RateCode.Validate() != nil {
				return incomplete(doc.DocumentNumber)
			}
		}
	}
	return nil
}

// buildEntries turns the bracket sums into register entries with stable
// IDs and a stable order
func (s *reportService) buildEntries(req dto.AggregatePeriodRequest, brackets map[string]*bracketAccumulator) []*register.RegisterEntry {
	keys := make([]string, 0, len(brackets))
	for key := range brackets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]*register.RegisterEntry, 0, len(keys))
	for _, key := range keys {
		acc := brackets[key]
		entries = append(entries, &register.RegisterEntry{
			ID:            register.DeterministicEntryID(req.PeriodStart, req.PeriodEnd, key, register.DirectionSale),
			PeriodStart:   req.PeriodStart,
			PeriodEnd:     req.PeriodEnd,
			Bracket:       key,
			Direction:     register.DirectionSale,
			DocumentCount: len(acc.documents),
			NetTotal:      acc.net,
			TaxTotal:      acc.tax,
		})
	}
	return entries
}

func lineBracket(code types.RateCode, percentage decimal.Decimal) string {
	return types.RateDecision{Code: code, Percentage: percentage}.BracketKey()
}
