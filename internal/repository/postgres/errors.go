package postgres

import (
	"github.com/cockroachdb/errors"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// wrapWriteError maps insert failures to domain errors
func wrapWriteError(err error, entity, id string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithHintf("Failed to save %s", entity).
		Mark(ierr.ErrDatabase)
}
