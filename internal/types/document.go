package types

import (
	"fmt"
	"time"

	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/samber/lo"
)

// DocumentType is a tagged variant over the documents the core issues.
// All types share header fields; type-specific handling is done with
// exhaustive switches so the compiler keeps us honest.
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "invoice"
	DocumentTypeProForma   DocumentType = "pro_forma"
	DocumentTypeAdvance    DocumentType = "advance"
	DocumentTypeCorrection DocumentType = "correction"
)

func (t DocumentType) String() string {
	return string(t)
}

func (t DocumentType) Validate() error {
	allowed := []DocumentType{
		DocumentTypeInvoice,
		DocumentTypeProForma,
		DocumentTypeAdvance,
		DocumentTypeCorrection,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid document type").
			WithHint("Please provide a valid document type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// NumberPrefix returns the series prefix used in formatted document numbers
func (t DocumentType) NumberPrefix() string {
	switch t {
	case DocumentTypeInvoice:
		return "FV"
	case DocumentTypeProForma:
		return "FP"
	case DocumentTypeAdvance:
		return "FZ"
	case DocumentTypeCorrection:
		return "FK"
	}
	return ""
}

// PeriodKeyFromTime derives the numbering period key for a document issued
// at the given time. Sequences are scoped per issuing year.
func PeriodKeyFromTime(t time.Time) string {
	return fmt.Sprintf("%04d", t.UTC().Year())
}

// FormatDocumentNumber renders the formatted, human-facing document number
// for a sequence value, e.g. FV/2025/00001.
func FormatDocumentNumber(docType DocumentType, periodKey string, sequence int64) string {
	return fmt.Sprintf("%s/%s/%05d", docType.NumberPrefix(), periodKey, sequence)
}
