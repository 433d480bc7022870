package postgres

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/complysense/complysense/internal/domain/upload"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/postgres"
	"github.com/complysense/complysense/internal/types"
)

type uploadRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewUploadRepository(db *postgres.DB, logger *logger.Logger) upload.Repository {
	return &uploadRepository{db: db, logger: logger}
}

func (r *uploadRepository) Create(ctx context.Context, u *upload.Upload) error {
	query := `
	INSERT INTO uploads (
		id, filename, source, content_type, raw_content, size_bytes,
		status, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9
	)
	`

	_, err := r.db.GetQuerier().ExecContext(ctx, query,
		u.ID,
		u.Filename,
		u.Source,
		u.ContentType,
		u.Content(),
		u.SizeBytes,
		u.Status,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		return wrapWriteError(err, "upload", u.ID)
	}

	return nil
}

func (r *uploadRepository) Get(ctx context.Context, id string) (*upload.Upload, error) {
	query := `
	SELECT
		id, filename, source, content_type, raw_content, size_bytes,
		status, created_at, updated_at
	FROM uploads
	WHERE id = $1 AND status = $2
	`

	var u upload.Upload
	err := r.db.GetQuerier().GetContext(ctx, &u, query, id, types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHint("Upload not found.").
				WithReportableDetails(map[string]interface{}{
					"upload_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load upload").
			Mark(ierr.ErrDatabase)
	}

	return &u, nil
}
