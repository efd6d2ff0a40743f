package invoice

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// PartySnapshot is the frozen identity of a document party at issue time.
// Buyer snapshots for private persons carry no identifier; business buyers
// always do.
type PartySnapshot struct {
	LegalName       string                       `json:"legal_name"`
	Address         string                       `json:"address"`
	IdentifierValue string                       `json:"identifier_value,omitempty"`
	Classification  types.CustomerClassification `json:"classification"`
	Country         string                       `json:"country"`
	// ProfileID references the CompanyProfile version behind a business
	// buyer snapshot, empty for persons
	ProfileID string `json:"profile_id,omitempty"`
}

// Invoice is immutable once issued. Any later change is expressed only
// through a correction document, never by mutation.
type Invoice struct {
	ID             string             `json:"id"`
	DocumentType   types.DocumentType `json:"document_type"`
	SequenceNumber int64              `json:"sequence_number"`
	// DocumentNumber is the formatted, gapless number, e.g. FV/2025/00001
	DocumentNumber string `json:"document_number"`
	PeriodKey      string `json:"period_key"`

	IssueDate time.Time  `json:"issue_date"`
	SaleDate  time.Time  `json:"sale_date"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	Seller PartySnapshot `json:"seller"`
	Buyer  PartySnapshot `json:"buyer"`

	ServiceCategory string          `json:"service_category"`
	Currency        string          `json:"currency"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalTax        decimal.Decimal `json:"total_tax"`
	Total           decimal.Decimal `json:"total"`

	LineItems []*LineItem `json:"line_items,omitempty"`

	// ContentHash is the sha256 of the canonical serialization, set at
	// issue time for tamper detection
	ContentHash string `json:"content_hash"`

	types.BaseModel
}

// canonicalInvoice is the fixed-order projection hashed for tamper
// detection. Amounts use fixed 2-decimal strings so a re-serialization of
// an unchanged invoice always reproduces the same bytes.
type canonicalInvoice struct {
	DocumentType   string          `json:"document_type"`
	DocumentNumber string          `json:"document_number"`
	IssueDate      string          `json:"issue_date"`
	SaleDate       string          `json:"sale_date"`
	Seller         PartySnapshot   `json:"seller"`
	Buyer          PartySnapshot   `json:"buyer"`
	Currency       string          `json:"currency"`
	Subtotal       string          `json:"subtotal"`
	TotalTax       string          `json:"total_tax"`
	Total          string          `json:"total"`
	Lines          []canonicalLine `json:"lines"`
}

type canonicalLine struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Net         string `json:"net"`
	Tax         string `json:"tax"`
	RateCode    string `json:"rate_code"`
	Percentage  string `json:"percentage"`
	LegalBasis  string `json:"legal_basis"`
	Confidence  string `json:"confidence"`
}

// ComputeHash returns the sha256 hex digest of the canonical serialization
func (i *Invoice) ComputeHash() string {
	canonical := canonicalInvoice{
		DocumentType:   i.DocumentType.String(),
		DocumentNumber: i.DocumentNumber,
		IssueDate:      i.IssueDate.UTC().Format(time.RFC3339),
		SaleDate:       i.SaleDate.UTC().Format(time.RFC3339),
		Seller:         i.Seller,
		Buyer:          i.Buyer,
		Currency:       i.Currency,
		Subtotal:       i.Subtotal.StringFixed(2),
		TotalTax:       i.TotalTax.StringFixed(2),
		Total:          i.Total.StringFixed(2),
		Lines:          make([]canonicalLine, 0, len(i.LineItems)),
	}

	for _, line := range i.LineItems {
		canonical.Lines = append(canonical.Lines, canonicalLine{
			Description: line.Description,
			Quantity:    line.Quantity.String(),
			Net:         line.Net.StringFixed(2),
			Tax:         line.Tax.StringFixed(2),
			RateCode:    line.RateCode.String(),
			Percentage:  line.RatePercentage.StringFixed(2),
			LegalBasis:  line.LegalBasis,
			Confidence:  line.RateConfidence.String(),
		})
	}

	payload, err := json.Marshal(canonical)
	if err != nil {
		// canonicalInvoice contains no unmarshalable types
		return ""
	}

	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:])
}

// Validate checks the invoice's arithmetic and structural invariants
func (i *Invoice) Validate() error {
	if err := i.DocumentType.Validate(); err != nil {
		return err
	}

	if i.Subtotal.IsNegative() && i.DocumentType != types.DocumentTypeCorrection {
		return NewValidationError("subtotal", "must be non negative")
	}

	sumNet := decimal.Zero
	sumTax := decimal.Zero
	for _, line := range i.LineItems {
		if err := line.Validate(); err != nil {
			return err
		}
		sumNet = sumNet.Add(line.Net)
		sumTax = sumTax.Add(line.Tax)
	}

	if !i.Subtotal.Equal(sumNet) {
		return NewValidationError("subtotal", "must equal the sum of line nets")
	}
	if !i.TotalTax.Equal(sumTax) {
		return NewValidationError("total_tax", "must equal the sum of line taxes")
	}
	if !i.Total.Equal(sumNet.Add(sumTax)) {
		return NewValidationError("total", "must equal subtotal + total_tax")
	}

	return nil
}
