package readiness

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/domain/report"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/types"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var ruleOrder = []string{
	report.RuleTotalsBalance,
	report.RuleLineMath,
	report.RuleDateISO,
	report.RuleCurrencyAllowed,
	report.RuleTRNPresent,
}

// reportIsWellFormed checks the shape every report has regardless of input
func reportIsWellFormed(rpt *report.Report) bool {
	if len(rpt.RuleFindings) != len(ruleOrder) {
		return false
	}
	for i, f := range rpt.RuleFindings {
		if f.Rule != ruleOrder[i] {
			return false
		}
	}

	s := rpt.Scores
	switch {
	case s.Rules%20 != 0 || s.Rules < 0 || s.Rules > 100:
		return false
	case s.Coverage < 0 || s.Coverage > percentOf(len(coverageFields), CoverageFieldDenominator):
		return false
	case (rpt.Meta.RowsParsed == 0) != (s.Data == 0):
		return false
	case rpt.Meta.RowsParsed > DefaultMaxInvoices:
		return false
	case len(rpt.Coverage.Missing) == 0 || len(rpt.Coverage.Close) != 0:
		return false
	}
	return true
}

var invoiceNumberPool = []string{"INV-A", "INV-B", "INV-C", "INV-D"}

// groupedCSV renders one valid CSV row per pick, where each pick selects an
// invoice number from the pool
func groupedCSV(picks []int) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	for i, pick := range picks {
		qty := i%5 + 1
		fmt.Fprintf(&b, "%s,2025-01-01,AED,Seller,100,Buyer,200,%d,0,%d,SKU-%d,%d,1,%d\n",
			invoiceNumberPool[pick], qty, qty, i, qty, qty)
	}
	return b.String()
}

func TestCSVGroupingProperties(t *testing.T) {
	parser := NewParser(logger.NewNopLogger())

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("rows group into one invoice per inv_no in first-seen order", prop.ForAll(
		func(picks []int) bool {
			res := parser.Parse([]byte(groupedCSV(picks)))
			if res.Format != types.FileTypeCSV {
				return false
			}

			var order []string
			lineCounts := make(map[string]int)
			firstRow := make(map[string]int)
			for i, pick := range picks {
				invNo := invoiceNumberPool[pick]
				if _, seen := lineCounts[invNo]; !seen {
					order = append(order, invNo)
					// row numbers count the header row
					firstRow[invNo] = i + 2
				}
				lineCounts[invNo]++
			}

			if len(res.Invoices) != len(order) {
				return false
			}
			for i, inv := range res.Invoices {
				if inv.ID == nil || *inv.ID != order[i] {
					return false
				}
				if len(inv.Lines) != lineCounts[order[i]] || inv.SourceRowNumber != firstRow[order[i]] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, len(invoiceNumberPool)-1)).SuchThat(func(picks []int) bool {
			return len(picks) > 0
		}),
	))

	properties.TestingRun(t)
}

func TestAnalyzeProperties(t *testing.T) {
	engine := NewEngine(config.GetDefaultConfig(), logger.NewNopLogger())

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("arbitrary content yields a well formed report", prop.ForAll(
		func(content string, answers map[string]bool) bool {
			return reportIsWellFormed(engine.Analyze([]byte(content), types.Questionnaire(answers)))
		},
		gen.AnyString(),
		gen.MapOf(gen.AlphaString(), gen.Bool()),
	))

	properties.Property("csv shaped content yields a well formed report", prop.ForAll(
		func(cells [][]string) bool {
			lines := []string{strings.TrimSuffix(csvHeader, "\n")}
			for _, row := range cells {
				lines = append(lines, strings.Join(row, ","))
			}
			rpt := engine.Analyze([]byte(strings.Join(lines, "\n")), nil)
			return reportIsWellFormed(rpt) && rpt.Meta.RowsParsed <= len(cells)
		},
		gen.SliceOf(gen.SliceOfN(14, gen.AlphaString())),
	))

	properties.Property("analysis is deterministic", prop.ForAll(
		func(content string, answers map[string]bool) bool {
			first := engine.Analyze([]byte(content), answers)
			second := engine.Analyze([]byte(content), answers)
			return reflect.DeepEqual(first, second)
		},
		gen.OneGenOf(gen.AnyString(), gen.Const(`[{"id":"INV-1","currency":"AED","lines":[]}]`)),
		gen.MapOf(gen.AlphaString(), gen.Bool()),
	))

	properties.TestingRun(t)
}
