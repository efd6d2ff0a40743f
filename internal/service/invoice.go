package service

import (
	"context"
	"time"

	"github.com/mariiahub/taxcore/internal/api/dto"
	"github.com/mariiahub/taxcore/internal/domain/company"
	"github.com/mariiahub/taxcore/internal/domain/invoice"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// InvoiceService builds and issues immutable invoices. Line tax amounts
// are rounded per line and the sequence number is allocated only after
// every computation has succeeded, so a validation failure never consumes
// a number.
type InvoiceService interface {
	IssueInvoice(ctx context.Context, req dto.IssueInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
}

type invoiceService struct {
	ServiceParams
	taxIDService TaxIdentifierService
	rateService  RateRuleService
}

func NewInvoiceService(params ServiceParams, taxIDService TaxIdentifierService, rateService RateRuleService) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		taxIDService:  taxIDService,
		rateService:   rateService,
	}
}

func (s *invoiceService) IssueInvoice(ctx context.Context, req dto.IssueInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	identifierStatus, buyerSnapshot, err := s.resolveBuyer(ctx, req.Buyer)
	if err != nil {
		return nil, err
	}

	docType := req.GetDocumentType()
	now := time.Now().UTC()

	inv := &invoice.Invoice{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		DocumentType:    docType,
		IssueDate:       now,
		SaleDate:        req.SaleDate,
		DueDate:         req.DueDate,
		Seller:          s.sellerSnapshot(),
		Buyer:           *buyerSnapshot,
		ServiceCategory: req.ServiceCategory,
		Currency:        s.Config.Seller.Currency,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}

	subtotal := decimal.Zero
	totalTax := decimal.Zero
	for _, lineReq := range req.Lines {
		net := types.RoundMinorUnit(lineReq.Quantity.Mul(lineReq.UnitPrice))

		decision, err := s.rateService.Resolve(ctx, types.SaleContext{
			ServiceCategory:  req.ServiceCategory,
			Price:            net,
			Classification:   req.Buyer.Classification,
			CustomerCountry:  req.Buyer.Country,
			SaleDate:         req.SaleDate,
			IdentifierStatus: identifierStatus,
		})
		if err != nil {
			return nil, err
		}

		tax := decimal.Zero
		if decision.Code.ChargesSellerSideTax() {
			tax = types.TaxAmount(net, decision.Percentage)
		}

		inv.LineItems = append(inv.LineItems, &invoice.LineItem{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:       inv.ID,
			Description:     lineReq.Description,
			Quantity:        lineReq.Quantity,
			UnitPrice:       lineReq.UnitPrice,
			Net:             net,
			Tax:             tax,
			RuleID:          decision.RuleID,
			RateCode:        decision.Code,
			RatePercentage:  decision.Percentage,
			LegalBasis:      decision.LegalBasis,
			RateConfidence:  decision.Confidence,
			ServiceCategory: req.ServiceCategory,
			BaseModel:       types.GetDefaultBaseModel(ctx),
		})
		subtotal = subtotal.Add(net)
		totalTax = totalTax.Add(tax)
	}

	inv.Subtotal = subtotal
	inv.TotalTax = totalTax
	inv.Total = subtotal.Add(totalTax)

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	// Numbering is the last step. Everything above can fail without
	// consuming a sequence value.
	periodKey := types.PeriodKeyFromTime(inv.IssueDate)
	seq, err := s.SequenceRepo.Next(ctx, docType, periodKey)
	if err != nil {
		return nil, err
	}
	inv.PeriodKey = periodKey
	inv.SequenceNumber = seq
	inv.DocumentNumber = types.FormatDocumentNumber(docType, periodKey, seq)
	inv.ContentHash = inv.ComputeHash()

	if err := s.InvoiceRepo.CreateWithLineItems(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("invoice issued",
		"invoice_id", inv.ID,
		"document_number", inv.DocumentNumber,
		"total", inv.Total,
		"currency", inv.Currency)

	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = &dto.InvoiceResponse{Invoice: inv}
	}
	return &dto.ListInvoicesResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

// resolveBuyer validates the buyer's identifier where one is mandatory and
// produces the frozen buyer snapshot, creating or versioning the company
// profile for business buyers.
func (s *invoiceService) resolveBuyer(ctx context.Context, buyer dto.BuyerInfo) (types.IdentifierStatus, *invoice.PartySnapshot, error) {
	if !buyer.Classification.IsBusiness() {
		return types.IdentifierStatusUnchecked, &invoice.PartySnapshot{
			LegalName:      buyer.LegalName,
			Address:        buyer.Address,
			Classification: buyer.Classification,
			Country:        buyer.Country,
		}, nil
	}

	if buyer.Identifier == "" {
		return "", nil, ierr.NewError("business buyer without tax identifier").
			WithHint("Business buyers must supply a tax identifier").
			WithReportableDetails(map[string]any{
				"classification": buyer.Classification,
			}).
			Mark(ierr.ErrMissingBuyerIdentifier)
	}

	identifier, err := s.taxIDService.Validate(ctx, buyer.Identifier, true)
	if err != nil {
		return "", nil, err
	}
	if !identifier.Status.AtLeastChecksumValid() {
		return "", nil, ierr.NewError("buyer tax identifier failed validation").
			WithHint("The buyer's tax identifier is not valid").
			WithReportableDetails(map[string]any{
				"identifier": identifier.Value,
				"status":     identifier.Status,
			}).
			Mark(ierr.ErrMissingBuyerIdentifier)
	}

	profile, err := s.snapshotProfile(ctx, buyer, identifier.Value)
	if err != nil {
		return "", nil, err
	}

	return identifier.Status, &invoice.PartySnapshot{
		LegalName:       profile.LegalName,
		Address:         profile.Address,
		IdentifierValue: profile.IdentifierValue,
		Classification:  profile.Classification,
		Country:         profile.Country,
		ProfileID:       profile.ID,
	}, nil
}

// snapshotProfile finds the current profile version for the identifier,
// versioning it when the supplied details differ. Profiles referenced by
// issued invoices are never mutated.
func (s *invoiceService) snapshotProfile(ctx context.Context, buyer dto.BuyerInfo, identifierValue string) (*company.CompanyProfile, error) {
	current, err := s.CompanyRepo.GetLatestByIdentifier(ctx, identifierValue)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	if current == nil {
		profile := company.New(ctx)
		profile.LegalName = buyer.LegalName
		profile.Address = buyer.Address
		profile.IdentifierValue = identifierValue
		profile.Classification = buyer.Classification
		profile.Country = buyer.Country
		if err := profile.Validate(); err != nil {
			return nil, err
		}
		if err := s.CompanyRepo.Create(ctx, profile); err != nil {
			return nil, err
		}
		return profile, nil
	}

	if current.LegalName == buyer.LegalName &&
		current.Address == buyer.Address &&
		current.Classification == buyer.Classification &&
		current.Country == buyer.Country {
		return current, nil
	}

	next := current.NewVersion(ctx)
	next.LegalName = buyer.LegalName
	next.Address = buyer.Address
	next.Classification = buyer.Classification
	next.Country = buyer.Country
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := s.CompanyRepo.Create(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *invoiceService) sellerSnapshot() invoice.PartySnapshot {
	seller := s.Config.Seller
	return invoice.PartySnapshot{
		LegalName:       seller.LegalName,
		Address:         seller.Address,
		IdentifierValue: seller.TaxIdentifier,
		Classification:  types.ClassificationDomesticBusiness,
		Country:         seller.Country,
	}
}
