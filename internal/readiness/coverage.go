package readiness

import (
	"github.com/complysense/complysense/internal/domain/invoice"
	"github.com/complysense/complysense/internal/domain/report"
)

// Coverage placeholders
const (
	MissingAllFields = "All fields missing"
	MissingMore      = "...and more"
)

// coverageField pairs a canonical field name with its accessor on an invoice
type coverageField struct {
	name  string
	value func(inv *invoice.Invoice) *string
}

// coverageFields is the fixed inspection order
var coverageFields = []coverageField{
	{"invoice.id", func(inv *invoice.Invoice) *string { return inv.ID }},
	{"invoice.issue_date", func(inv *invoice.Invoice) *string { return inv.IssueDate }},
	{"invoice.currency", func(inv *invoice.Invoice) *string { return inv.Currency }},
	{"buyer.trn", func(inv *invoice.Invoice) *string { return inv.BuyerTaxID }},
	{"seller.trn", func(inv *invoice.Invoice) *string { return inv.SellerTaxID }},
}

// CoverageAnalyzer reports which canonical fields are present, sampling only
// the first invoice
type CoverageAnalyzer struct{}

func NewCoverageAnalyzer() *CoverageAnalyzer {
	return &CoverageAnalyzer{}
}

func (c *CoverageAnalyzer) Analyze(invoices []*invoice.Invoice) report.Coverage {
	if len(invoices) == 0 {
		return report.Coverage{
			Matched: []string{},
			Close:   []string{},
			Missing: []string{MissingAllFields},
		}
	}

	first := invoices[0]
	matched := make([]string, 0, len(coverageFields))
	for _, f := range coverageFields {
		if f.value(first) != nil {
			matched = append(matched, f.name)
		}
	}

	return report.Coverage{
		Matched: matched,
		Close:   []string{},
		Missing: []string{MissingMore},
	}
}
