package service

import (
	"context"
	"time"

	"github.com/mariiahub/taxcore/internal/api/dto"
	"github.com/mariiahub/taxcore/internal/domain/correction"
	"github.com/mariiahub/taxcore/internal/domain/invoice"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// CorrectionService computes refund amounts against the refund policy and
// issues correction documents. Corrections are the only way an issued
// invoice's amounts ever change; cumulative corrections can never exceed a
// full reversal of the original.
type CorrectionService interface {
	CorrectInvoice(ctx context.Context, req dto.CorrectInvoiceRequest) (*dto.CorrectionResponse, error)
	GetCorrection(ctx context.Context, id string) (*dto.CorrectionResponse, error)
	ListCorrections(ctx context.Context, filter *types.CorrectionFilter) (*dto.ListCorrectionsResponse, error)
}

type correctionService struct {
	ServiceParams
}

func NewCorrectionService(params ServiceParams) CorrectionService {
	return &correctionService{ServiceParams: params}
}

func (s *correctionService) CorrectInvoice(ctx context.Context, req dto.CorrectInvoiceRequest) (*dto.CorrectionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	original, err := s.InvoiceRepo.Get(ctx, req.InvoiceID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHint("The referenced invoice does not exist").
				Mark(ierr.ErrUnknownInvoice)
		}
		return nil, err
	}
	if original.DocumentType == types.DocumentTypeProForma || original.DocumentType == types.DocumentTypeCorrection {
		return nil, ierr.NewError("document type cannot be corrected").
			WithHint("Only issued invoices and advance invoices can be corrected").
			WithReportableDetails(map[string]any{
				"document_type": original.DocumentType,
			}).
			Mark(ierr.ErrUnknownInvoice)
	}

	asOf := time.Now().UTC()
	if req.AsOf != nil {
		asOf = req.AsOf.UTC()
	}

	maxFraction, err := s.policyFraction(ctx, original, req.Reason, asOf)
	if err != nil {
		return nil, err
	}

	refunded, err := s.cumulativeReversal(ctx, original.ID)
	if err != nil {
		return nil, err
	}

	fraction, err := s.effectiveFraction(original, req, maxFraction, refunded)
	if err != nil {
		return nil, err
	}

	doc := &correction.CorrectionDocument{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CORRECTION),
		InvoiceID:      original.ID,
		Reason:         req.Reason,
		ReasonNote:     req.ReasonNote,
		IssueDate:      asOf,
		RefundFraction: fraction,
		Currency:       original.Currency,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	netDelta := decimal.Zero
	taxDelta := decimal.Zero
	for _, line := range original.LineItems {
		lineNet := types.RoundMinorUnit(line.Net.Mul(fraction)).Neg()
		lineTax := types.RoundMinorUnit(line.Tax.Mul(fraction)).Neg()
		doc.LineDeltas = append(doc.LineDeltas, &correction.LineDelta{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CORRECTION_LINE_ITEM),
			CorrectionID:   doc.ID,
			OriginalLineID: line.ID,
			Description:    line.Description,
			NetDelta:       lineNet,
			TaxDelta:       lineTax,
			RuleID:         line.RuleID,
			RateCode:       line.RateCode,
			RatePercentage: line.RatePercentage,
			LegalBasis:     line.LegalBasis,
			RateConfidence: line.RateConfidence,
			BaseModel:      types.GetDefaultBaseModel(ctx),
		})
		netDelta = netDelta.Add(lineNet)
		taxDelta = taxDelta.Add(lineTax)
	}
	doc.NetDelta = netDelta
	doc.TaxDelta = taxDelta
	doc.TotalDelta = netDelta.Add(taxDelta)

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	// numbering last, same rule as issuance
	periodKey := types.PeriodKeyFromTime(doc.IssueDate)
	seq, err := s.SequenceRepo.Next(ctx, types.DocumentTypeCorrection, periodKey)
	if err != nil {
		return nil, err
	}
	doc.PeriodKey = periodKey
	doc.SequenceNumber = seq
	doc.DocumentNumber = types.FormatDocumentNumber(types.DocumentTypeCorrection, periodKey, seq)
	doc.ContentHash = doc.ComputeHash()

	if err := s.CorrectionRepo.CreateWithLineDeltas(ctx, doc); err != nil {
		return nil, err
	}

	s.Logger.Infow("correction issued",
		"correction_id", doc.ID,
		"document_number", doc.DocumentNumber,
		"invoice_id", original.ID,
		"reason", doc.Reason,
		"total_delta", doc.TotalDelta)

	return &dto.CorrectionResponse{CorrectionDocument: doc}, nil
}

func (s *correctionService) GetCorrection(ctx context.Context, id string) (*dto.CorrectionResponse, error) {
	doc, err := s.CorrectionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CorrectionResponse{CorrectionDocument: doc}, nil
}

func (s *correctionService) ListCorrections(ctx context.Context, filter *types.CorrectionFilter) (*dto.ListCorrectionsResponse, error) {
	if filter == nil {
		filter = types.NewCorrectionFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	docs, err := s.CorrectionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.CorrectionRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.CorrectionResponse, len(docs))
	for i, doc := range docs {
		items[i] = &dto.CorrectionResponse{CorrectionDocument: doc}
	}
	return &dto.ListCorrectionsResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

// policyFraction computes the maximum refund fraction allowed by the
// refund policy for the invoice's service category at the given time.
// Override reasons force a full refund regardless of notice.
func (s *correctionService) policyFraction(ctx context.Context, original *invoice.Invoice, reason types.CorrectionReason, asOf time.Time) (decimal.Decimal, error) {
	if reason.OverridesRefundPolicy() {
		return decimal.NewFromInt(1), nil
	}

	policy, err := s.RefundPolicyRepo.GetForCategory(ctx, original.ServiceCategory)
	if err != nil {
		if ierr.IsNotFound(err) {
			// no configured policy means no timing restriction
			return decimal.NewFromInt(1), nil
		}
		return decimal.Zero, err
	}

	noticeHours := int64(original.SaleDate.Sub(asOf).Hours())
	if noticeHours < 0 {
		noticeHours = 0
	}
	return policy.MaxFraction(noticeHours), nil
}

// cumulativeReversal sums the fraction of the original already reversed by
// prior corrections, expressed against the original total.
func (s *correctionService) cumulativeReversal(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	prior, err := s.CorrectionRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, doc := range prior {
		total = total.Add(doc.TotalDelta.Neg())
	}
	return total, nil
}

// effectiveFraction derives the refund fraction actually applied: the
// requested amount capped by policy, then by the remaining reversible
// value of the original.
func (s *correctionService) effectiveFraction(original *invoice.Invoice, req dto.CorrectInvoiceRequest, maxFraction, refunded decimal.Decimal) (decimal.Decimal, error) {
	if original.Total.IsZero() {
		return decimal.Zero, correction.NewPolicyViolationError(
			"A zero value invoice cannot be corrected", map[string]any{
				"invoice_id": original.ID,
			})
	}

	remaining := original.Total.Sub(refunded)
	if !remaining.IsPositive() {
		return decimal.Zero, correction.NewPolicyViolationError(
			"The invoice is already fully reversed", map[string]any{
				"invoice_id":       original.ID,
				"already_refunded": refunded,
			})
	}

	fraction := maxFraction
	if req.RequestedAmount != nil {
		requested := req.RequestedAmount.Div(original.Total)
		if requested.GreaterThan(maxFraction) && !req.Reason.OverridesRefundPolicy() {
			requested = maxFraction
		}
		fraction = requested
	}

	if !fraction.IsPositive() {
		return decimal.Zero, correction.NewPolicyViolationError(
			"The refund policy does not permit a refund at this notice", map[string]any{
				"invoice_id":   original.ID,
				"max_fraction": maxFraction,
			})
	}

	amount := types.RoundMinorUnit(original.Total.Mul(fraction))
	if amount.GreaterThan(remaining) {
		return decimal.Zero, correction.NewPolicyViolationError(
			"Cumulative corrections would exceed a full reversal of the original", map[string]any{
				"invoice_id":       original.ID,
				"already_refunded": refunded,
				"requested":        amount,
			})
	}

	return fraction, nil
}
