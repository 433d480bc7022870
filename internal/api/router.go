package api

import (
	v1 "github.com/complysense/complysense/internal/api/v1"
	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/pyroscope"
	"github.com/complysense/complysense/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Upload   *v1.UploadHandler
	Analysis *v1.AnalysisHandler
	Report   *v1.ReportHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, pyroscopeService *pyroscope.Service) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = cfg.Analysis.MaxUploadBytes

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware(cfg),
		middleware.ErrorHandler(logger),
		middleware.SentryMiddleware(cfg),
		middleware.PyroscopeMiddleware(pyroscopeService),
		middleware.RateLimitMiddleware(cfg, logger),
	)

	router.GET("/health", handlers.Health.Health)

	router.POST("/upload", handlers.Upload.CreateUpload)
	router.POST("/analyze", handlers.Analysis.Analyze)
	router.GET("/report/:reportId", handlers.Report.GetReport)

	logger.Debugw("router initialised", "mode", cfg.Deployment.Mode)
	return router
}
