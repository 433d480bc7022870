package report

import (
	"time"

	"github.com/complysense/complysense/internal/types"
)

// GeneratedEvent is published once a report has been stored
type GeneratedEvent struct {
	ReportID   string         `json:"report_id"`
	ShortCode  string         `json:"short_code"`
	UploadID   string         `json:"upload_id"`
	Overall    int            `json:"overall"`
	RowsParsed int            `json:"rows_parsed"`
	Format     types.FileType `json:"format"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewGeneratedEvent(rec *Record) *GeneratedEvent {
	evt := &GeneratedEvent{
		ReportID:  rec.ID,
		ShortCode: rec.ShortCode,
		UploadID:  rec.UploadID,
		CreatedAt: rec.CreatedAt,
	}
	if rec.Report != nil {
		evt.Overall = rec.Report.Scores.Overall
		evt.RowsParsed = rec.Report.Meta.RowsParsed
		evt.Format = rec.Report.Meta.Format
	}
	return evt
}
