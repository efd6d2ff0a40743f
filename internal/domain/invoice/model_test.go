package invoice

import (
	"testing"
	"time"

	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleInvoice() *Invoice {
	issueDate := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	return &Invoice{
		ID:             "inv_1",
		DocumentType:   types.DocumentTypeInvoice,
		SequenceNumber: 1,
		DocumentNumber: "FV/2025/00001",
		PeriodKey:      "2025",
		IssueDate:      issueDate,
		SaleDate:       issueDate,
		Seller: PartySnapshot{
			LegalName:       "Mariia Hub Sp. z o.o.",
			IdentifierValue: "5260250274",
			Classification:  types.ClassificationDomesticBusiness,
			Country:         "PL",
		},
		Buyer: PartySnapshot{
			LegalName:      "Jan Kowalski",
			Classification: types.ClassificationDomesticPerson,
			Country:        "PL",
		},
		ServiceCategory: "consultation",
		Currency:        "PLN",
		Subtotal:        decimal.NewFromInt(600),
		TotalTax:        decimal.NewFromInt(138),
		Total:           decimal.NewFromInt(738),
		LineItems: []*LineItem{
			{
				ID:             "line_1",
				InvoiceID:      "inv_1",
				Description:    "Consultation",
				Quantity:       decimal.NewFromInt(1),
				UnitPrice:      decimal.NewFromInt(600),
				Net:            decimal.NewFromInt(600),
				Tax:            decimal.NewFromInt(138),
				RateCode:       types.RateCodePercentage,
				RatePercentage: decimal.NewFromInt(23),
				LegalBasis:     "art. 41 ust. 1",
				RateConfidence: types.RateConfidenceRuleOnly,
			},
		},
	}
}

func TestInvoiceComputeHash(t *testing.T) {
	inv := sampleInvoice()

	first := inv.ComputeHash()
	assert.NotEmpty(t, first)
	assert.Len(t, first, 64)

	// unchanged content reproduces the same digest
	assert.Equal(t, first, inv.ComputeHash())

	// equivalent decimal representations hash identically
	inv.Subtotal = decimal.RequireFromString("600.00")
	assert.Equal(t, first, inv.ComputeHash())

	// any content change produces a different digest
	inv.LineItems[0].Net = decimal.NewFromInt(601)
	assert.NotEqual(t, first, inv.ComputeHash())
}

func TestInvoiceValidate(t *testing.T) {
	t.Run("consistent invoice passes", func(t *testing.T) {
		assert.NoError(t, sampleInvoice().Validate())
	})

	t.Run("subtotal mismatch", func(t *testing.T) {
		inv := sampleInvoice()
		inv.Subtotal = decimal.NewFromInt(599)
		err := inv.Validate()
		assert.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("total mismatch", func(t *testing.T) {
		inv := sampleInvoice()
		inv.Total = decimal.NewFromInt(700)
		assert.Error(t, inv.Validate())
	})

	t.Run("negative subtotal rejected outside corrections", func(t *testing.T) {
		inv := sampleInvoice()
		inv.Subtotal = decimal.NewFromInt(-600)
		assert.Error(t, inv.Validate())
	})

	t.Run("zero quantity line rejected", func(t *testing.T) {
		inv := sampleInvoice()
		inv.LineItems[0].Quantity = decimal.Zero
		assert.Error(t, inv.Validate())
	})

	t.Run("non percentage code must carry zero tax", func(t *testing.T) {
		inv := sampleInvoice()
		inv.LineItems[0].RateCode = types.RateCodeReverseCharge
		err := inv.Validate()
		assert.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "FV/2025/00001",
		types.FormatDocumentNumber(types.DocumentTypeInvoice, "2025", 1))
	assert.Equal(t, "FK/2025/00042",
		types.FormatDocumentNumber(types.DocumentTypeCorrection, "2025", 42))
	assert.Equal(t, "FP/2026/12345",
		types.FormatDocumentNumber(types.DocumentTypeProForma, "2026", 12345))
}
