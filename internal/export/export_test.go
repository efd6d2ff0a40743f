package export

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayload() *Payload {
	return &Payload{
		PeriodStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Currency:    "PLN",
		Entity: EntityInfo{
			LegalName:     "Mariia Hub Sp. z o.o.",
			TaxIdentifier: "5260250274",
			Address:       "ul. Piekna 1, 00-001 Warszawa",
			Country:       "PL",
		},
		Documents: []DocumentRow{
			{
				Number:       "FV/2025/00002",
				Type:         "invoice",
				IssueDate:    time.Date(2025, 6, 20, 14, 0, 0, 0, time.UTC),
				Counterparty: "Anna Nowak",
				Net:          decimal.NewFromInt(400),
				Tax:          decimal.NewFromInt(92),
			},
			{
				Number:         "FV/2025/00001",
				Type:           "invoice",
				IssueDate:      time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
				Counterparty:   "Firma ABC Sp. z o.o.",
				CounterpartyID: "7740001454",
				Net:            decimal.NewFromInt(600),
				Tax:            decimal.NewFromInt(138),
			},
		},
		Brackets: []BracketRow{
			{Code: "exempt", DocumentCount: 1, Net: decimal.NewFromInt(200), Tax: decimal.Zero},
			{Code: "23.00", DocumentCount: 2, Net: decimal.NewFromInt(1000), Tax: decimal.NewFromInt(230)},
		},
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	payload := samplePayload()

	first, err := payload.Render()
	require.NoError(t, err)
	second, err := payload.Render()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// input ordering must not leak into the output
	shuffled := samplePayload()
	shuffled.Documents[0], shuffled.Documents[1] = shuffled.Documents[1], shuffled.Documents[0]
	shuffled.Brackets[0], shuffled.Brackets[1] = shuffled.Brackets[1], shuffled.Brackets[0]
	third, err := shuffled.Render()
	require.NoError(t, err)
	assert.Equal(t, first, third)
}

func TestRenderOrdering(t *testing.T) {
	rendered, err := samplePayload().Render()
	require.NoError(t, err)
	out := string(rendered)

	// documents by number, brackets by code
	assert.Less(t, strings.Index(out, "FV/2025/00001"), strings.Index(out, "FV/2025/00002"))
	assert.Less(t, strings.Index(out, "<Code>23.00</Code>"), strings.Index(out, "<Code>exempt</Code>"))
}

func TestRenderContent(t *testing.T) {
	rendered, err := samplePayload().Render()
	require.NoError(t, err)
	out := string(rendered)

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `<TaxRegister schemaVersion="1-0">`)
	assert.Contains(t, out, "<PeriodStart>2025-06-01</PeriodStart>")
	assert.Contains(t, out, "<PeriodEnd>2025-07-01</PeriodEnd>")
	assert.Contains(t, out, "<Currency>PLN</Currency>")
	assert.Contains(t, out, "<TaxIdentifier>5260250274</TaxIdentifier>")

	// amounts are fixed two decimal strings
	assert.Contains(t, out, "<Net>600.00</Net>")
	assert.Contains(t, out, "<Gross>738.00</Gross>")

	// the summary totals span all documents
	assert.Contains(t, out, "<NetTotal>1000.00</NetTotal>")
	assert.Contains(t, out, "<TaxTotal>230.00</TaxTotal>")
	assert.Contains(t, out, "<GrossTotal>1230.00</GrossTotal>")

	// reproducibility forbids embedding the generation time
	assert.NotContains(t, out, "GeneratedAt")
}

func TestRenderEmptyPeriod(t *testing.T) {
	payload := &Payload{
		PeriodStart: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Currency:    "PLN",
	}

	rendered, err := payload.Render()
	require.NoError(t, err)
	out := string(rendered)

	assert.Contains(t, out, "<DocumentCount>0</DocumentCount>")
	assert.Contains(t, out, "<NetTotal>0.00</NetTotal>")
}
