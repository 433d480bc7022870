package readiness

import (
	"testing"

	"github.com/complysense/complysense/internal/domain/invoice"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestCoverageAnalyzer_Empty(t *testing.T) {
	cov := NewCoverageAnalyzer().Analyze([]*invoice.Invoice{})

	assert.Equal(t, []string{}, cov.Matched)
	assert.Equal(t, []string{}, cov.Close)
	assert.Equal(t, []string{"All fields missing"}, cov.Missing)
}

func TestCoverageAnalyzer_SamplesFirstInvoiceOnly(t *testing.T) {
	first := invoice.New(1)
	first.Currency = lo.ToPtr("AED")
	first.SellerTaxID = lo.ToPtr("")

	cov := NewCoverageAnalyzer().Analyze([]*invoice.Invoice{first, validInvoice(2)})

	assert.Equal(t, []string{"invoice.currency", "seller.trn"}, cov.Matched)
	assert.Equal(t, []string{}, cov.Close)
	assert.Equal(t, []string{"...and more"}, cov.Missing)
}

func TestCoverageAnalyzer_FixedOrder(t *testing.T) {
	cov := NewCoverageAnalyzer().Analyze([]*invoice.Invoice{validInvoice(1)})
	assert.Equal(t, []string{
		"invoice.id",
		"invoice.issue_date",
		"invoice.currency",
		"buyer.trn",
		"seller.trn",
	}, cov.Matched)
}
