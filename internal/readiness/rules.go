package readiness

import (
	"regexp"

	"github.com/complysense/complysense/internal/domain/invoice"
	"github.com/complysense/complysense/internal/domain/report"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var (
	// AmountTolerance is the largest absolute difference treated as equal
	AmountTolerance = decimal.RequireFromString("0.01")

	// AllowedCurrencies lists the invoice currencies accepted by CURRENCY_ALLOWED
	AllowedCurrencies = []string{"AED", "SAR", "MYR", "USD"}

	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// RuleEvaluator runs the fixed compliance rules over a set of invoices
type RuleEvaluator struct {
	tolerance decimal.Decimal
}

func NewRuleEvaluator() *RuleEvaluator {
	return &RuleEvaluator{tolerance: AmountTolerance}
}

// Evaluate returns exactly one finding per rule in fixed order. Every rule
// holds vacuously over an empty invoice set.
func (r *RuleEvaluator) Evaluate(invoices []*invoice.Invoice) []report.Finding {
	return []report.Finding{
		r.totalsBalance(invoices),
		r.lineMath(invoices),
		r.dateISO(invoices),
		r.currencyAllowed(invoices),
		r.trnPresent(invoices),
	}
}

func (r *RuleEvaluator) totalsBalance(invoices []*invoice.Invoice) report.Finding {
	ok := lo.EveryBy(invoices, func(inv *invoice.Invoice) bool {
		return inv.TotalsBalanced(r.tolerance)
	})
	return report.Finding{Rule: report.RuleTotalsBalance, OK: ok}
}

func (r *RuleEvaluator) lineMath(invoices []*invoice.Invoice) report.Finding {
	offender, found := lo.Find(invoices, func(inv *invoice.Invoice) bool {
		return inv.HasUnbalancedLine(r.tolerance)
	})
	if !found {
		return report.Finding{Rule: report.RuleLineMath, OK: true}
	}
	return report.Finding{
		Rule:        report.RuleLineMath,
		OK:          false,
		ExampleLine: lo.ToPtr(offender.SourceRowNumber),
	}
}

func (r *RuleEvaluator) dateISO(invoices []*invoice.Invoice) report.Finding {
	ok := lo.EveryBy(invoices, func(inv *invoice.Invoice) bool {
		return inv.IssueDate != nil && isoDatePattern.MatchString(*inv.IssueDate)
	})
	return report.Finding{Rule: report.RuleDateISO, OK: ok}
}

func (r *RuleEvaluator) currencyAllowed(invoices []*invoice.Invoice) report.Finding {
	offender, found := lo.Find(invoices, func(inv *invoice.Invoice) bool {
		return inv.Currency == nil || !lo.Contains(AllowedCurrencies, *inv.Currency)
	})
	if !found {
		return report.Finding{Rule: report.RuleCurrencyAllowed, OK: true}
	}
	// a missing currency fails without a value
	return report.Finding{
		Rule:  report.RuleCurrencyAllowed,
		OK:    false,
		Value: offender.Currency,
	}
}

func (r *RuleEvaluator) trnPresent(invoices []*invoice.Invoice) report.Finding {
	ok := lo.EveryBy(invoices, func(inv *invoice.Invoice) bool {
		return !invoice.IsBlank(inv.BuyerTaxID) && !invoice.IsBlank(inv.SellerTaxID)
	})
	return report.Finding{Rule: report.RuleTRNPresent, OK: ok}
}
