package readiness

import (
	"fmt"

	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/domain/report"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/types"
)

// DefaultMaxInvoices caps the invoices analysed per request
const DefaultMaxInvoices = 200

// Engine runs the readiness pipeline: parse, cap, evaluate rules, measure
// coverage and score. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	parser      *Parser
	rules       *RuleEvaluator
	coverage    *CoverageAnalyzer
	scores      *ScoreCalculator
	maxInvoices int
	logger      *logger.Logger
}

func NewEngine(cfg *config.Configuration, logger *logger.Logger) *Engine {
	maxInvoices := cfg.Analysis.MaxInvoices
	if maxInvoices <= 0 {
		maxInvoices = DefaultMaxInvoices
	}

	return &Engine{
		parser:      NewParser(logger),
		rules:       NewRuleEvaluator(),
		coverage:    NewCoverageAnalyzer(),
		scores:      NewScoreCalculator(),
		maxInvoices: maxInvoices,
		logger:      logger,
	}
}

// Analyze always returns a complete report. Content that cannot be parsed
// produces a report over zero invoices.
func (e *Engine) Analyze(content []byte, questionnaire types.Questionnaire) *report.Report {
	parsed := e.parser.Parse(content)

	invoices := parsed.Invoices
	if len(invoices) > e.maxInvoices {
		e.logger.Debugw("capping parsed invoices",
			"parsed", len(invoices),
			"max_invoices", e.maxInvoices,
		)
		invoices = invoices[:e.maxInvoices]
	}

	findings := e.rules.Evaluate(invoices)
	coverage := e.coverage.Analyze(invoices)
	scores := e.scores.Calculate(invoices, coverage, findings, questionnaire)

	return &report.Report{
		Scores:       scores,
		Coverage:     coverage,
		RuleFindings: findings,
		Meta: report.Meta{
			RowsParsed: len(invoices),
			Format:     parsed.Format,
		},
	}
}

// SafeAnalyze runs Analyze and converts an unexpected panic into a system error
func (e *Engine) SafeAnalyze(content []byte, questionnaire types.Questionnaire) (rpt *report.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorw("readiness analysis panicked", "panic", fmt.Sprint(r))
			rpt = nil
			err = ierr.NewErrorf("readiness analysis failed: %v", r).
				WithHint("Analysis failed").
				Mark(ierr.ErrSystem)
		}
	}()

	return e.Analyze(content, questionnaire), nil
}
