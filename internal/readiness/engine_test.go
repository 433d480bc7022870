package readiness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/domain/report"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type EngineSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngine(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.engine = NewEngine(config.GetDefaultConfig(), logger.NewNopLogger())
}

func jsonInvoices(n int, build func(i int) string) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, build(i))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func cleanInvoice(i int) string {
	return fmt.Sprintf(`{"id":"INV-%d","date":"2025-01-01","currency":"USD","seller_trn":"S","buyer_trn":"B",`+
		`"total_excl_vat":100,"vat_amount":5,"total_incl_vat":105,`+
		`"lines":[{"sku":"A","qty":2,"unitPrice":50,"lineTotal":100}]}`, i)
}

func (s *EngineSuite) TestEmptyInput() {
	rpt := s.engine.Analyze([]byte(""), nil)

	s.Equal(0, rpt.Meta.RowsParsed)
	s.Equal(types.FileTypeNone, rpt.Meta.Format)
	s.Len(rpt.RuleFindings, 5)
	for _, f := range rpt.RuleFindings {
		s.True(f.OK, f.Rule)
	}
	s.Equal([]string{}, rpt.Coverage.Matched)
	s.Equal([]string{"All fields missing"}, rpt.Coverage.Missing)
	s.Equal(report.Scores{Data: 0, Coverage: 0, Rules: 100, Posture: 0, Overall: 30}, rpt.Scores)
}

func (s *EngineSuite) TestEmptyInputWithPosture() {
	rpt := s.engine.Analyze([]byte("not an invoice"), types.Questionnaire{"a": true, "b": true, "c": true})
	// 0 + 0 + 30 + 10
	s.Equal(40, rpt.Scores.Overall)
	s.Equal(100, rpt.Scores.Posture)
}

func (s *EngineSuite) TestImbalancedTotals() {
	content := `[{"id":"INV-1","date":"2025-01-01","currency":"AED","seller_trn":"S","buyer_trn":"B",` +
		`"total_excl_vat":100,"vat_amount":5,"total_incl_vat":105.02,"lines":[]}]`

	rpt := s.engine.Analyze([]byte(content), types.Questionnaire{})

	s.Equal(1, rpt.Meta.RowsParsed)
	s.Equal(types.FileTypeJSON, rpt.Meta.Format)
	s.False(rpt.RuleFindings[0].OK)
	s.Equal(report.RuleTotalsBalance, rpt.RuleFindings[0].Rule)
	s.Equal(80, rpt.Scores.Rules)
}

func (s *EngineSuite) TestCapsInvoicesBeforeRules() {
	content := jsonInvoices(250, func(i int) string {
		if i >= 200 {
			return `{"id":"LATE","currency":"EUR"}`
		}
		return cleanInvoice(i)
	})

	rpt := s.engine.Analyze([]byte(content), nil)

	s.Equal(200, rpt.Meta.RowsParsed)
	for _, f := range rpt.RuleFindings {
		s.True(f.OK, f.Rule)
	}
}

func (s *EngineSuite) TestConfiguredCap() {
	cfg := config.GetDefaultConfig()
	cfg.Analysis.MaxInvoices = 3
	engine := NewEngine(cfg, logger.NewNopLogger())

	rpt := engine.Analyze([]byte(jsonInvoices(5, cleanInvoice)), nil)
	s.Equal(3, rpt.Meta.RowsParsed)
}

func (s *EngineSuite) TestCSVReport() {
	content := csvHeader +
		"INV-1,2025-01-01,USD,S,100,B,200,100,5,105,A,1,100,100\n" +
		"INV-2,01/02/2025,EUR,S,100,B,,10,1,11,B,2,5,10\n" +
		"INV-2,01/02/2025,EUR,S,100,B,,10,1,11,C,3,3,10\n"

	rpt := s.engine.Analyze([]byte(content), types.Questionnaire{"webhooks": true})

	s.Equal(2, rpt.Meta.RowsParsed)
	s.Equal(types.FileTypeCSV, rpt.Meta.Format)

	byRule := make(map[string]report.Finding)
	for _, f := range rpt.RuleFindings {
		byRule[f.Rule] = f
	}
	s.True(byRule[report.RuleTotalsBalance].OK)
	s.False(byRule[report.RuleLineMath].OK)
	s.Require().NotNil(byRule[report.RuleLineMath].ExampleLine)
	s.Equal(3, *byRule[report.RuleLineMath].ExampleLine)
	s.False(byRule[report.RuleDateISO].OK)
	s.False(byRule[report.RuleCurrencyAllowed].OK)
	s.Equal("EUR", *byRule[report.RuleCurrencyAllowed].Value)
	s.False(byRule[report.RuleTRNPresent].OK)

	s.Len(rpt.Coverage.Matched, 5)
	// data 100, coverage 33, rules 20, posture 33: 25 + 11.55 + 6 + 3.3 = 45.85
	s.Equal(report.Scores{Data: 100, Coverage: 33, Rules: 20, Posture: 33, Overall: 46}, rpt.Scores)
}

func (s *EngineSuite) TestIdempotent() {
	content := []byte(jsonInvoices(10, cleanInvoice))
	q := types.Questionnaire{"a": true, "b": false}

	first, err := jsoniter.Marshal(s.engine.Analyze(content, q))
	s.Require().NoError(err)
	second, err := jsoniter.Marshal(s.engine.Analyze(content, q))
	s.Require().NoError(err)

	s.Equal(string(first), string(second))
}

func (s *EngineSuite) TestSafeAnalyze() {
	rpt, err := s.engine.SafeAnalyze([]byte(jsonInvoices(1, cleanInvoice)), nil)
	s.NoError(err)
	s.Equal(1, rpt.Meta.RowsParsed)
}

func TestEngine_SafeAnalyzeRecoversPanics(t *testing.T) {
	engine := &Engine{logger: logger.NewNopLogger()}

	rpt, err := engine.SafeAnalyze([]byte("[]"), nil)
	require.Error(t, err)
	assert.True(t, ierr.IsSystem(err))
	assert.Nil(t, rpt)
}

func TestReport_SerialisesEmptyListsAsArrays(t *testing.T) {
	engine := NewEngine(config.GetDefaultConfig(), logger.NewNopLogger())

	out, err := jsoniter.Marshal(engine.Analyze(nil, nil))
	require.NoError(t, err)

	assert.Contains(t, string(out), `"matched":[]`)
	assert.Contains(t, string(out), `"close":[]`)
	assert.Contains(t, string(out), `"rowsParsed":0`)
	assert.NotContains(t, string(out), `exampleLine`)
}
