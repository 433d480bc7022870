package report

import (
	"github.com/complysense/complysense/internal/types"
)

// Rule names, in evaluation order
const (
	RuleTotalsBalance   = "TOTALS_BALANCE"
	RuleLineMath        = "LINE_MATH"
	RuleDateISO         = "DATE_ISO"
	RuleCurrencyAllowed = "CURRENCY_ALLOWED"
	RuleTRNPresent      = "TRN_PRESENT"
)

// Report is the outcome of one readiness analysis
type Report struct {
	Scores       Scores    `json:"scores"`
	Coverage     Coverage  `json:"coverage"`
	RuleFindings []Finding `json:"ruleFindings"`
	Meta         Meta      `json:"meta"`
}

// Finding is the result of one compliance rule over the whole invoice set.
// ExampleLine and Value are only set on failing findings whose rule defines them.
type Finding struct {
	Rule        string  `json:"rule"`
	OK          bool    `json:"ok"`
	ExampleLine *int    `json:"exampleLine,omitempty"`
	Value       *string `json:"value,omitempty"`
}

type Coverage struct {
	Matched []string `json:"matched"`
	Close   []string `json:"close"`
	Missing []string `json:"missing"`
}

type Scores struct {
	Data     int `json:"data"`
	Coverage int `json:"coverage"`
	Rules    int `json:"rules"`
	Posture  int `json:"posture"`
	Overall  int `json:"overall"`
}

type Meta struct {
	RowsParsed int            `json:"rowsParsed"`
	Format     types.FileType `json:"format"`
}

// Record is a persisted report together with the request that produced it
type Record struct {
	ID            string              `json:"id" db:"id"`
	ShortCode     string              `json:"short_code" db:"short_code"`
	UploadID      string              `json:"upload_id" db:"upload_id"`
	Questionnaire types.Questionnaire `json:"questionnaire" db:"questionnaire"`
	Report        *Report             `json:"report" db:"-"`
	types.BaseModel
}

// NewRecord wraps a freshly generated report with new identifiers
func NewRecord(uploadID string, questionnaire types.Questionnaire, rpt *Report) *Record {
	if questionnaire == nil {
		questionnaire = types.Questionnaire{}
	}
	return &Record{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REPORT),
		ShortCode:     types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_REPORT),
		UploadID:      uploadID,
		Questionnaire: questionnaire,
		Report:        rpt,
		BaseModel:     types.GetDefaultBaseModel(),
	}
}
