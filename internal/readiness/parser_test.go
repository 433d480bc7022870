package readiness

import (
	"testing"

	"github.com/complysense/complysense/internal/domain/invoice"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csvHeader = "inv_no,issued_on,curr,sellerName,sellerTax,buyerName,buyerTax,totalNet,vat,grandTotal,lineSku,lineQty,linePrice,lineTotal\n"

func ids(invoices []*invoice.Invoice) []string {
	return lo.Map(invoices, func(inv *invoice.Invoice, _ int) string {
		if inv.ID == nil {
			return ""
		}
		return *inv.ID
	})
}

func TestParser_JSON(t *testing.T) {
	p := NewParser(logger.NewNopLogger())

	content := `[
		{"id": "INV-1", "date": "2025-01-31", "currency": "AED", "seller_trn": "100", "buyer_trn": "200",
		 "total_excl_vat": 100, "vat_amount": 5, "total_incl_vat": 105,
		 "lines": [{"sku": "A", "qty": 2, "unitPrice": 50, "lineTotal": 100}]},
		{"id": "INV-2", "date": "2025-02-01", "currency": "USD", "total_excl_vat": "10.50", "extra": true}
	]`

	res := p.Parse([]byte(content))
	require.Equal(t, types.FileTypeJSON, res.Format)
	require.Len(t, res.Invoices, 2)

	assert.Equal(t, []string{"INV-1", "INV-2"}, ids(res.Invoices))
	assert.Equal(t, 1, res.Invoices[0].SourceRowNumber)
	assert.Equal(t, 2, res.Invoices[1].SourceRowNumber)

	first := res.Invoices[0]
	require.Len(t, first.Lines, 1)
	assert.Equal(t, "A", *first.Lines[0].SKU)
	assert.True(t, first.TotalInclTax.Valid)
	assert.Equal(t, "105", first.TotalInclTax.Decimal.String())

	second := res.Invoices[1]
	assert.NotNil(t, second.Lines)
	assert.Empty(t, second.Lines)
	assert.Equal(t, "10.5", second.TotalExclTax.Decimal.String())
	assert.False(t, second.TaxAmount.Valid)
	assert.Nil(t, second.BuyerTaxID)
}

func TestParser_JSONEdgeCases(t *testing.T) {
	p := NewParser(logger.NewNopLogger())

	tests := []struct {
		name       string
		content    string
		wantFormat types.FileType
		wantIDs    []string
	}{
		{"empty array", `[]`, types.FileTypeJSON, []string{}},
		{"byte order mark", "\xEF\xBB\xBF[{\"id\":\"A\"}]", types.FileTypeJSON, []string{"A"}},
		{"leading whitespace", "\n  [{\"id\":\"A\"}]", types.FileTypeJSON, []string{"A"}},
		{"trailing bytes ignored", `[{"id":"A"}] trailing`, types.FileTypeJSON, []string{"A"}},
		{"null element", `[null]`, types.FileTypeNone, []string{}},
		{"object instead of array", `{"id":"A"}`, types.FileTypeNone, []string{}},
		{"wrong field type", `[{"id":"A","total_incl_vat":"abc"}]`, types.FileTypeNone, []string{}},
		{"truncated", `[{"id":"A"`, types.FileTypeNone, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Parse([]byte(tt.content))
			assert.Equal(t, tt.wantFormat, res.Format)
			assert.Equal(t, tt.wantIDs, ids(res.Invoices))
		})
	}
}

func TestParser_JSONKeysAreCaseSensitive(t *testing.T) {
	p := NewParser(logger.NewNopLogger())

	res := p.Parse([]byte(`[{"ID":"x","Currency":"AED","DATE":"2020-01-01","Lines":[{"SKU":"A"}]}]`))
	require.Equal(t, types.FileTypeJSON, res.Format)
	require.Len(t, res.Invoices, 1)

	inv := res.Invoices[0]
	assert.Nil(t, inv.ID)
	assert.Nil(t, inv.Currency)
	assert.Nil(t, inv.IssueDate)
	assert.Empty(t, inv.Lines)
}

func TestParser_CSVGroupsByInvoiceNumber(t *testing.T) {
	p := NewParser(logger.NewNopLogger())

	content := csvHeader +
		"INV-2,2025-01-02,AED,Seller,100,Buyer,200,100,5,105,A,1,100,100\n" +
		"INV-1,2025-01-01,USD,Seller,100,Buyer,200,50,2.5,52.5,X,2,25,50\n" +
		"INV-2,2025-09-09,SAR,Other,999,Other,999,999,0,999,B,1,0,0\n"

	res := p.Parse([]byte(content))
	require.Equal(t, types.FileTypeCSV, res.Format)
	require.Len(t, res.Invoices, 2)
	assert.Equal(t, []string{"INV-2", "INV-1"}, ids(res.Invoices))

	inv2 := res.Invoices[0]
	assert.Equal(t, 2, inv2.SourceRowNumber)
	assert.Equal(t, "AED", *inv2.Currency)
	assert.Equal(t, "2025-01-02", *inv2.IssueDate)
	assert.Equal(t, "105", inv2.TotalInclTax.Decimal.String())
	require.Len(t, inv2.Lines, 2)
	assert.Equal(t, "A", *inv2.Lines[0].SKU)
	assert.Equal(t, "B", *inv2.Lines[1].SKU)
	assert.Nil(t, inv2.Lines[0].Description)

	inv1 := res.Invoices[1]
	assert.Equal(t, 3, inv1.SourceRowNumber)
	require.Len(t, inv1.Lines, 1)
	assert.Equal(t, "2.5", inv1.TaxAmount.Decimal.String())
}

func TestParser_CSVHeaderNamesAreTrimmed(t *testing.T) {
	p := NewParser(logger.NewNopLogger())

	content := " inv_no , issued_on ,curr,sellerName,sellerTax,buyerName,buyerTax,totalNet,vat,grandTotal,lineSku,lineQty,linePrice,lineTotal\n" +
		"INV-1,2025-01-01,USD,S, ,B,200,1,0,1,X,1,1,1\n"

	res := p.Parse([]byte(content))
	require.Equal(t, types.FileTypeCSV, res.Format)
	require.Len(t, res.Invoices, 1)
	assert.Equal(t, " ", *res.Invoices[0].SellerTaxID)
}

func TestParser_CSVFailuresCollapseToEmpty(t *testing.T) {
	p := NewParser(logger.NewNopLogger())

	tests := []struct {
		name    string
		content string
	}{
		{"empty input", ""},
		{"header only", csvHeader},
		{"single line of text", "hello world"},
		{"missing column", "inv_no,issued_on\nINV-1,2025-01-01\n"},
		{"short row", csvHeader + "INV-1,2025-01-01,USD\n"},
		{"malformed amount", csvHeader + "INV-1,2025-01-01,USD,S,1,B,2,abc,0,1,X,1,1,1\n"},
		{"empty amount", csvHeader + "INV-1,2025-01-01,USD,S,1,B,2,,0,1,X,1,1,1\n"},
		{"bad row after good rows", csvHeader +
			"INV-1,2025-01-01,USD,S,1,B,2,1,0,1,X,1,1,1\n" +
			"INV-1,2025-01-01,USD,S,1,B,2,1,0,1,X,one,1,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Parse([]byte(tt.content))
			assert.Equal(t, types.FileTypeNone, res.Format)
			assert.NotNil(t, res.Invoices)
			assert.Empty(t, res.Invoices)
		})
	}
}
