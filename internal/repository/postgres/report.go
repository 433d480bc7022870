package postgres

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/complysense/complysense/internal/domain/report"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/postgres"
	"github.com/complysense/complysense/internal/types"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type reportRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// reportRow is a reports table row with the report body still encoded
type reportRow struct {
	report.Record
	Body []byte `db:"report"`
}

func NewReportRepository(db *postgres.DB, logger *logger.Logger) report.Repository {
	return &reportRepository{db: db, logger: logger}
}

func (r *reportRepository) Create(ctx context.Context, rec *report.Record) error {
	query := `
	INSERT INTO reports (
		id, short_code, upload_id, questionnaire, report,
		status, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8
	)
	`

	body, err := json.Marshal(rec.Report)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to encode report").
			Mark(ierr.ErrSystem)
	}

	_, err = r.db.GetQuerier().ExecContext(ctx, query,
		rec.ID,
		rec.ShortCode,
		rec.UploadID,
		rec.Questionnaire,
		body,
		rec.Status,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return wrapWriteError(err, "report", rec.ID)
	}

	return nil
}

func (r *reportRepository) Get(ctx context.Context, id string) (*report.Record, error) {
	return r.getBy(ctx, "id", id)
}

func (r *reportRepository) GetByShortCode(ctx context.Context, shortCode string) (*report.Record, error) {
	return r.getBy(ctx, "short_code", shortCode)
}

// getBy loads a report by one of its unique columns. column is never user input.
func (r *reportRepository) getBy(ctx context.Context, column, value string) (*report.Record, error) {
	query := `
	SELECT
		id, short_code, upload_id, questionnaire, report,
		status, created_at, updated_at
	FROM reports
	WHERE ` + column + ` = $1 AND status = $2
	`

	var row reportRow
	err := r.db.GetQuerier().GetContext(ctx, &row, query, value, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHint("Report not found.").
				WithReportableDetails(map[string]interface{}{
					column: value,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load report").
			Mark(ierr.ErrDatabase)
	}

	var body report.Report
	if err := json.Unmarshal(row.Body, &body); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode stored report").
			Mark(ierr.ErrDatabase)
	}

	rec := row.Record
	rec.Report = &body
	return &rec, nil
}
