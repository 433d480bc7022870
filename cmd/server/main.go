package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/complysense/complysense/internal/api"
	v1 "github.com/complysense/complysense/internal/api/v1"
	"github.com/complysense/complysense/internal/cache"
	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/postgres"
	"github.com/complysense/complysense/internal/pubsub"
	kafkaPubSub "github.com/complysense/complysense/internal/pubsub/kafka"
	memoryPubSub "github.com/complysense/complysense/internal/pubsub/memory"
	pubsubRouter "github.com/complysense/complysense/internal/pubsub/router"
	"github.com/complysense/complysense/internal/pyroscope"
	"github.com/complysense/complysense/internal/readiness"
	"github.com/complysense/complysense/internal/repository"
	"github.com/complysense/complysense/internal/s3"
	"github.com/complysense/complysense/internal/sentry"
	"github.com/complysense/complysense/internal/service"
	"github.com/complysense/complysense/internal/types"
	"github.com/complysense/complysense/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

const shutdownTimeout = 10 * time.Second

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres, nil when disabled
			postgres.NewDB,

			// Archive, nil when disabled
			s3.NewService,

			// PubSub
			providePubSub,
			pubsubRouter.NewRouter,

			// Repositories
			repository.NewUploadRepository,
			repository.NewReportRepository,

			// Analysis engine
			readiness.NewEngine,
		),
		sentry.Module(),
		pyroscope.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewUploadService,
			service.NewAnalysisService,
			service.NewReportService,
			service.NewReportEventService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			registerShutdownHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func providePubSub(cfg *config.Configuration, log *logger.Logger) (pubsub.PubSub, error) {
	switch cfg.PubSub.Backend {
	case types.PubSubBackendKafka:
		return kafkaPubSub.NewPubSub(cfg, log)
	default:
		return memoryPubSub.NewPubSub(log), nil
	}
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	db *postgres.DB,
	uploadService service.UploadService,
	analysisService service.AnalysisService,
	reportService service.ReportService,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(db, logger),
		Upload:   v1.NewUploadHandler(uploadService, cfg, logger),
		Analysis: v1.NewAnalysisHandler(analysisService, logger),
		Report:   v1.NewReportHandler(reportService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, pyroscopeService *pyroscope.Service) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, pyroscopeService)
}

func registerShutdownHooks(lc fx.Lifecycle, db *postgres.DB, ps pubsub.PubSub, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if ps != nil {
				if err := ps.Close(); err != nil {
					log.Errorw("failed to close pubsub", "error", err)
				}
			}
			db.Close()
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	reportEventService service.ReportEventService,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		if cfg.PubSub.Consumer.Enabled {
			startMessageRouter(lc, router, reportEventService, log)
		}
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	reportEventService service.ReportEventService,
	logger *logger.Logger,
) {
	// Register handlers before starting the router
	reportEventService.RegisterHandler(router)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting message router")
			go func() {
				if err := router.Run(); err != nil {
					logger.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping message router")
			return router.Close()
		},
	})
}
