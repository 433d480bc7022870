package readiness

import (
	"github.com/complysense/complysense/internal/domain/invoice"
	"github.com/complysense/complysense/internal/domain/report"
	"github.com/complysense/complysense/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Scoring constants. The denominators are fixed reference sizes and are not
// derived from the data, so coverage can exceed 100.
const (
	CoverageFieldDenominator   = 15
	PostureQuestionDenominator = 3
)

var (
	WeightData     = decimal.RequireFromString("0.25")
	WeightCoverage = decimal.RequireFromString("0.35")
	WeightRules    = decimal.RequireFromString("0.30")
	WeightPosture  = decimal.RequireFromString("0.10")

	hundred = decimal.NewFromInt(100)
)

// ScoreCalculator combines the analysis stages into sub-scores and an overall score
type ScoreCalculator struct{}

func NewScoreCalculator() *ScoreCalculator {
	return &ScoreCalculator{}
}

// Calculate treats a nil questionnaire as having no affirmative answers
func (s *ScoreCalculator) Calculate(
	invoices []*invoice.Invoice,
	coverage report.Coverage,
	findings []report.Finding,
	questionnaire types.Questionnaire,
) report.Scores {
	data := 0
	if len(invoices) > 0 {
		data = 100
	}

	coverageScore := percentOf(len(coverage.Matched), CoverageFieldDenominator)

	passed := lo.CountBy(findings, func(f report.Finding) bool { return f.OK })
	rulesScore := 0
	if len(findings) > 0 {
		rulesScore = percentOf(passed, len(findings))
	}

	posture := percentOf(questionnaire.TrueCount(), PostureQuestionDenominator)

	overall := decimal.NewFromInt(int64(data)).Mul(WeightData).
		Add(decimal.NewFromInt(int64(coverageScore)).Mul(WeightCoverage)).
		Add(decimal.NewFromInt(int64(rulesScore)).Mul(WeightRules)).
		Add(decimal.NewFromInt(int64(posture)).Mul(WeightPosture))

	return report.Scores{
		Data:     data,
		Coverage: coverageScore,
		Rules:    rulesScore,
		Posture:  posture,
		Overall:  roundHalfUp(overall),
	}
}

// percentOf returns round(part / whole * 100)
func percentOf(part, whole int) int {
	ratio := decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole)))
	return roundHalfUp(ratio)
}

// roundHalfUp rounds to the nearest integer with halves away from zero.
// All score inputs are non-negative so this is the same as half-up.
func roundHalfUp(d decimal.Decimal) int {
	return int(d.Round(0).IntPart())
}
