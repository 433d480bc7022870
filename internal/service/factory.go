package service

import (
	"github.com/complysense/complysense/internal/cache"
	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/domain/report"
	"github.com/complysense/complysense/internal/domain/upload"
	"github.com/complysense/complysense/internal/idempotency"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/pubsub"
	"github.com/complysense/complysense/internal/pyroscope"
	"github.com/complysense/complysense/internal/readiness"
	"github.com/complysense/complysense/internal/s3"
	"github.com/complysense/complysense/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Engine *readiness.Engine
	Cache  cache.Cache

	// Repositories
	UploadRepo upload.Repository
	ReportRepo report.Repository

	// Optional collaborators, nil when disabled
	S3     s3.Service
	PubSub pubsub.PubSub

	Sentry      *sentry.Service
	Pyroscope   *pyroscope.Service
	Idempotency *idempotency.Generator
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	engine *readiness.Engine,
	cache cache.Cache,
	uploadRepo upload.Repository,
	reportRepo report.Repository,
	s3Service s3.Service,
	pubSub pubsub.PubSub,
	sentryService *sentry.Service,
	pyroscopeService *pyroscope.Service,
) ServiceParams {
	return ServiceParams{
		Logger:      logger,
		Config:      config,
		Engine:      engine,
		Cache:       cache,
		UploadRepo:  uploadRepo,
		ReportRepo:  reportRepo,
		S3:          s3Service,
		PubSub:      pubSub,
		Sentry:      sentryService,
		Pyroscope:   pyroscopeService,
		Idempotency: idempotency.NewGenerator(),
	}
}
