package export

import "encoding/xml"

// The register export schema is fixed by the receiving authority. Field
// names, element order and numeric formatting are a strict contract, so
// everything is rendered to strings before marshalling and nothing here is
// ever reordered.

type xmlRegisterExport struct {
	XMLName       xml.Name         `xml:"TaxRegister"`
	SchemaVersion string           `xml:"schemaVersion,attr"`
	Header        xmlHeader        `xml:"Header"`
	Entity        xmlEntity        `xml:"Entity"`
	Documents     []xmlDocumentRow `xml:"Documents>Document"`
	Brackets      []xmlBracketRow  `xml:"Totals>Bracket"`
	Summary       xmlSummary       `xml:"Summary"`
}

type xmlHeader struct {
	PeriodStart string `xml:"PeriodStart"`
	PeriodEnd   string `xml:"PeriodEnd"`
	Currency    string `xml:"Currency"`
}

type xmlEntity struct {
	LegalName     string `xml:"LegalName"`
	TaxIdentifier string `xml:"TaxIdentifier"`
	Address       string `xml:"Address"`
	Country       string `xml:"Country"`
}

type xmlDocumentRow struct {
	Number       string `xml:"Number"`
	Type         string `xml:"Type"`
	IssueDate    string `xml:"IssueDate"`
	Counterparty string `xml:"Counterparty"`
	// CounterpartyID is empty for private persons
	CounterpartyID string `xml:"CounterpartyId"`
	Net            string `xml:"Net"`
	Tax            string `xml:"Tax"`
	Gross          string `xml:"Gross"`
}

type xmlBracketRow struct {
	Code          string `xml:"Code"`
	DocumentCount int    `xml:"DocumentCount"`
	Net           string `xml:"Net"`
	Tax           string `xml:"Tax"`
}

type xmlSummary struct {
	DocumentCount int    `xml:"DocumentCount"`
	NetTotal      string `xml:"NetTotal"`
	TaxTotal      string `xml:"TaxTotal"`
	GrossTotal    string `xml:"GrossTotal"`
}
