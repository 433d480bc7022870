package repository

import (
	"github.com/complysense/complysense/internal/domain/report"
	"github.com/complysense/complysense/internal/domain/upload"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/postgres"
	"github.com/complysense/complysense/internal/repository/memory"
	postgresRepo "github.com/complysense/complysense/internal/repository/postgres"
)

type RepositoryType string

const (
	PostgresRepo RepositoryType = "postgres"
	MemoryRepo   RepositoryType = "memory"
)

// TypeFor reports which backend the repositories use for a given connection
func TypeFor(db *postgres.DB) RepositoryType {
	if db == nil {
		return MemoryRepo
	}
	return PostgresRepo
}

func NewUploadRepository(db *postgres.DB, logger *logger.Logger) upload.Repository {
	if TypeFor(db) == MemoryRepo {
		return memory.NewUploadStore()
	}
	return postgresRepo.NewUploadRepository(db, logger)
}

func NewReportRepository(db *postgres.DB, logger *logger.Logger) report.Repository {
	if TypeFor(db) == MemoryRepo {
		return memory.NewReportStore()
	}
	return postgresRepo.NewReportRepository(db, logger)
}
