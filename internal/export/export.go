// Package export renders the period register into the authority's fixed
// XML schema. Output must be byte for byte reproducible for an unchanged
// document set, so all numeric values are fixed two decimal strings and
// rows are emitted in a deterministic order.
package export

import (
	"encoding/xml"
	"sort"
	"time"

	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/shopspring/decimal"
)

const schemaVersion = "1-0"

// EntityInfo is the issuing company header of the export
type EntityInfo struct {
	LegalName     string
	TaxIdentifier string
	Address       string
	Country       string
}

// DocumentRow is one itemized document in the export, invoices and
// corrections alike. Correction amounts are negative.
type DocumentRow struct {
	Number         string
	Type           string
	IssueDate      time.Time
	Counterparty   string
	CounterpartyID string
	Net            decimal.Decimal
	Tax            decimal.Decimal
}

// BracketRow is one per-bracket totals line
type BracketRow struct {
	Code          string
	DocumentCount int
	Net           decimal.Decimal
	Tax           decimal.Decimal
}

// Payload is the assembled register export before rendering. It carries no
// generation timestamp: the rendered bytes must be a pure function of the
// document set so reruns are byte for byte reproducible.
type Payload struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Currency    string
	Entity      EntityInfo
	Documents   []DocumentRow
	Brackets    []BracketRow
}

// Render produces the final export bytes. Documents are ordered by number
// and brackets by code so reruns over the same inputs reproduce identical
// bytes regardless of input ordering.
func (p *Payload) Render() ([]byte, error) {
	docs := make([]DocumentRow, len(p.Documents))
	copy(docs, p.Documents)
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Number < docs[j].Number
	})

	brackets := make([]BracketRow, len(p.Brackets))
	copy(brackets, p.Brackets)
	sort.Slice(brackets, func(i, j int) bool {
		return brackets[i].Code < brackets[j].Code
	})

	out := &xmlRegisterExport{
		SchemaVersion: schemaVersion,
		Header: xmlHeader{
			PeriodStart: p.PeriodStart.UTC().Format("2006-01-02"),
			PeriodEnd:   p.PeriodEnd.UTC().Format("2006-01-02"),
			Currency:    p.Currency,
		},
		Entity: xmlEntity{
			LegalName:     p.Entity.LegalName,
			TaxIdentifier: p.Entity.TaxIdentifier,
			Address:       p.Entity.Address,
			Country:       p.Entity.Country,
		},
	}

	netTotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, doc := range docs {
		out.Documents = append(out.Documents, xmlDocumentRow{
			Number:         doc.Number,
			Type:           doc.Type,
			IssueDate:      doc.IssueDate.UTC().Format("2006-01-02"),
			Counterparty:   doc.Counterparty,
			CounterpartyID: doc.CounterpartyID,
			Net:            doc.Net.StringFixed(2),
			Tax:            doc.Tax.StringFixed(2),
			Gross:          doc.Net.Add(doc.Tax).StringFixed(2),
		})
		netTotal = netTotal.Add(doc.Net)
		taxTotal = taxTotal.Add(doc.Tax)
	}

	for _, bracket := range brackets {
		out.Brackets = append(out.Brackets, xmlBracketRow{
			Code:          bracket.Code,
			DocumentCount: bracket.DocumentCount,
			Net:           bracket.Net.StringFixed(2),
			Tax:           bracket.Tax.StringFixed(2),
		})
	}

	out.Summary = xmlSummary{
		DocumentCount: len(docs),
		NetTotal:      netTotal.StringFixed(2),
		TaxTotal:      taxTotal.StringFixed(2),
		GrossTotal:    netTotal.Add(taxTotal).StringFixed(2),
	}

	body, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to render register export").
			Mark(ierr.ErrSystem)
	}

	return append([]byte(xml.Header), body...), nil
}
