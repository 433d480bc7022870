package invoice

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Invoice is one commercial document recovered from an upload. Invoices live
// for the duration of a single analysis and are never persisted.
type Invoice struct {
	ID           *string             `json:"id"`
	IssueDate    *string             `json:"date"`
	Currency     *string             `json:"currency"`
	SellerName   *string             `json:"seller_name"`
	SellerTaxID  *string             `json:"seller_trn"`
	BuyerName    *string             `json:"buyer_name"`
	BuyerTaxID   *string             `json:"buyer_trn"`
	TotalExclTax decimal.NullDecimal `json:"total_excl_vat"`
	TaxAmount    decimal.NullDecimal `json:"vat_amount"`
	TotalInclTax decimal.NullDecimal `json:"total_incl_vat"`
	Lines        []Line              `json:"lines"`

	// SourceRowNumber is the 1-based position of the invoice in the original
	// input. It is assigned once by the parser.
	SourceRowNumber int `json:"-"`
}

// Line is one line item, owned by exactly one invoice
type Line struct {
	SKU         *string             `json:"sku"`
	Description *string             `json:"description"`
	Quantity    decimal.NullDecimal `json:"qty"`
	UnitPrice   decimal.NullDecimal `json:"unitPrice"`
	LineTotal   decimal.NullDecimal `json:"lineTotal"`
}

// New returns an empty invoice with a non-nil line sequence
func New(sourceRowNumber int) *Invoice {
	return &Invoice{
		Lines:           make([]Line, 0),
		SourceRowNumber: sourceRowNumber,
	}
}

// AddLine appends a line, preserving insertion order
func (inv *Invoice) AddLine(line Line) {
	inv.Lines = append(inv.Lines, line)
}

// TotalsBalanced reports whether |net + tax - gross| <= tolerance.
// An invoice with any missing total is not balanced.
func (inv *Invoice) TotalsBalanced(tolerance decimal.Decimal) bool {
	if !inv.TotalExclTax.Valid || !inv.TaxAmount.Valid || !inv.TotalInclTax.Valid {
		return false
	}
	diff := inv.TotalExclTax.Decimal.
		Add(inv.TaxAmount.Decimal).
		Sub(inv.TotalInclTax.Decimal).
		Abs()
	return diff.LessThanOrEqual(tolerance)
}

// HasUnbalancedLine reports whether any line fails the line math check
func (inv *Invoice) HasUnbalancedLine(tolerance decimal.Decimal) bool {
	for _, line := range inv.Lines {
		if !line.Balanced(tolerance) {
			return true
		}
	}
	return false
}

// Balanced reports whether |quantity * unitPrice - lineTotal| <= tolerance.
// A line with any missing amount is not balanced.
func (l Line) Balanced(tolerance decimal.Decimal) bool {
	if !l.Quantity.Valid || !l.UnitPrice.Valid || !l.LineTotal.Valid {
		return false
	}
	diff := l.Quantity.Decimal.
		Mul(l.UnitPrice.Decimal).
		Sub(l.LineTotal.Decimal).
		Abs()
	return diff.LessThanOrEqual(tolerance)
}

// IsBlank reports whether s is nil, empty or made only of blank runes
func IsBlank(s *string) bool {
	return s == nil || strings.IndexFunc(*s, func(r rune) bool { return !isBlankRune(r) }) < 0
}

// isBlankRune accepts the ASCII control whitespace plus Unicode space, line
// and paragraph separators. The non-breaking spaces U+00A0, U+2007 and U+202F
// and the next-line control U+0085 are not blank.
func isBlankRune(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', 0x1C, 0x1D, 0x1E, 0x1F:
		return true
	case '\u00A0', '\u2007', '\u202F':
		return false
	}
	return unicode.In(r, unicode.Zs, unicode.Zl, unicode.Zp)
}
