package correction

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/mariiahub/taxcore/internal/domain/invoice"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// CorrectionDocument reverses or adjusts an original invoice. Deltas are
// negative for reductions and carry the same rate decision fields the
// original lines were taxed under, so bracket totals in period reports net
// out correctly.
type CorrectionDocument struct {
	ID             string `json:"id"`
	InvoiceID      string `json:"invoice_id"`
	SequenceNumber int64  `json:"sequence_number"`
	// DocumentNumber uses the correction series, e.g. FK/2025/00003
	DocumentNumber string `json:"document_number"`
	PeriodKey      string `json:"period_key"`

	Reason     types.CorrectionReason `json:"reason"`
	ReasonNote string                 `json:"reason_note,omitempty"`
	IssueDate  time.Time              `json:"issue_date"`

	// RefundFraction is the fraction of the original value refunded by
	// this document, after policy capping, in [0, 1]
	RefundFraction decimal.Decimal `json:"refund_fraction"`

	Currency    string          `json:"currency"`
	NetDelta    decimal.Decimal `json:"net_delta"`
	TaxDelta    decimal.Decimal `json:"tax_delta"`
	TotalDelta  decimal.Decimal `json:"total_delta"`
	LineDeltas  []*LineDelta    `json:"line_deltas,omitempty"`
	ContentHash string          `json:"content_hash"`

	types.BaseModel
}

// LineDelta is the per-line adjustment of a correction document
type LineDelta struct {
	ID           string          `json:"id"`
	CorrectionID string          `json:"correction_id"`
	// OriginalLineID points at the invoice line being adjusted
	OriginalLineID string          `json:"original_line_id"`
	Description    string          `json:"description"`
	NetDelta       decimal.Decimal `json:"net_delta"`
	TaxDelta       decimal.Decimal `json:"tax_delta"`

	RuleID         string               `json:"rule_id,omitempty"`
	RateCode       types.RateCode       `json:"rate_code"`
	RatePercentage decimal.Decimal      `json:"rate_percentage"`
	LegalBasis     string               `json:"legal_basis,omitempty"`
	RateConfidence types.RateConfidence `json:"rate_confidence"`

	types.BaseModel
}

type canonicalCorrection struct {
	DocumentNumber string          `json:"document_number"`
	InvoiceID      string          `json:"invoice_id"`
	Reason         string          `json:"reason"`
	IssueDate      string          `json:"issue_date"`
	Currency       string          `json:"currency"`
	NetDelta       string          `json:"net_delta"`
	TaxDelta       string          `json:"tax_delta"`
	TotalDelta     string          `json:"total_delta"`
	Lines          []canonicalLine `json:"lines"`
}

type canonicalLine struct {
	OriginalLineID string `json:"original_line_id"`
	NetDelta       string `json:"net_delta"`
	TaxDelta       string `json:"tax_delta"`
	RateCode       string `json:"rate_code"`
	Percentage     string `json:"percentage"`
}

// ComputeHash returns the sha256 hex digest of the canonical serialization
func (c *CorrectionDocument) ComputeHash() string {
	canonical := canonicalCorrection{
		DocumentNumber: c.DocumentNumber,
		InvoiceID:      c.InvoiceID,
		Reason:         c.Reason.String(),
		IssueDate:      c.IssueDate.UTC().Format(time.RFC3339),
		Currency:       c.Currency,
		NetDelta:       c.NetDelta.StringFixed(2),
		TaxDelta:       c.TaxDelta.StringFixed(2),
		TotalDelta:     c.TotalDelta.StringFixed(2),
		Lines:          make([]canonicalLine, 0, len(c.LineDeltas)),
	}
	for _, delta := range c.LineDeltas {
		canonical.Lines = append(canonical.Lines, canonicalLine{
			OriginalLineID: delta.OriginalLineID,
			NetDelta:       delta.NetDelta.StringFixed(2),
			TaxDelta:       delta.TaxDelta.StringFixed(2),
			RateCode:       delta.RateCode.String(),
			Percentage:     delta.RatePercentage.StringFixed(2),
		})
	}

	payload, err := json.Marshal(canonical)
	if err != nil {
		return ""
	}
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:])
}

func (c *CorrectionDocument) Validate() error {
	if err := c.Reason.Validate(); err != nil {
		return err
	}
	if c.InvoiceID == "" {
		return invoice.NewValidationError("invoice_id", "is required")
	}
	if c.RefundFraction.IsNegative() || c.RefundFraction.GreaterThan(decimal.NewFromInt(1)) {
		return invoice.NewValidationError("refund_fraction", "must be within [0, 1]")
	}

	sumNet := decimal.Zero
	sumTax := decimal.Zero
	for _, delta := range c.LineDeltas {
		sumNet = sumNet.Add(delta.NetDelta)
		sumTax = sumTax.Add(delta.TaxDelta)
	}
	if !c.NetDelta.Equal(sumNet) {
		return invoice.NewValidationError("net_delta", "must equal the sum of line net deltas")
	}
	if !c.TaxDelta.Equal(sumTax) {
		return invoice.NewValidationError("tax_delta", "must equal the sum of line tax deltas")
	}
	if !c.TotalDelta.Equal(sumNet.Add(sumTax)) {
		return invoice.NewValidationError("total_delta", "must equal net_delta + tax_delta")
	}
	return nil
}

// NewPolicyViolationError reports a correction rejected by the refund policy
func NewPolicyViolationError(message string, details map[string]any) error {
	return ierr.NewError("refund policy violation").
		WithHint(message).
		WithReportableDetails(details).
		Mark(ierr.ErrPolicyViolation)
}
