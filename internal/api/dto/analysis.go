package dto

import (
	"github.com/complysense/complysense/internal/domain/report"
	"github.com/complysense/complysense/internal/types"
	"github.com/complysense/complysense/internal/validator"
)

// AnalyzeRequest asks for a readiness report over a stored upload
type AnalyzeRequest struct {
	UploadID      string              `json:"uploadId" validate:"required,upload_id"`
	Questionnaire types.Questionnaire `json:"questionnaire"`
}

func (r *AnalyzeRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// AnalyzeResponse returns the generated report with its identifiers
type AnalyzeResponse struct {
	ReportID  string         `json:"reportId"`
	ShortCode string         `json:"shortCode"`
	Report    *report.Report `json:"report"`
}

func NewAnalyzeResponse(rec *report.Record) *AnalyzeResponse {
	return &AnalyzeResponse{
		ReportID:  rec.ID,
		ShortCode: rec.ShortCode,
		Report:    rec.Report,
	}
}
