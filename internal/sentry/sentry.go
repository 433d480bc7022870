package sentry

import (
	"context"
	"time"

	"github.com/complysense/complysense/internal/config"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/types"
	"github.com/getsentry/sentry-go"
	"go.uber.org/fx"
)

const flushTimeout = 2 * time.Second

// Service reports analysis failures and traces. Every method is a no-op when
// Sentry is disabled or the service is nil.
type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewSentryService),
		fx.Invoke(RegisterHooks),
	)
}

// RegisterHooks initialises the SDK on start and flushes on stop
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !svc.IsEnabled() {
				svc.logger.Info("sentry disabled")
				return nil
			}

			if err := sentry.Init(clientOptions(svc.cfg.Sentry)); err != nil {
				svc.logger.Errorw("failed to initialise sentry", "error", err)
				return err
			}
			svc.logger.Infow("sentry initialised",
				"environment", svc.cfg.Sentry.Environment,
				"sample_rate", svc.cfg.Sentry.SampleRate,
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if svc.IsEnabled() {
				sentry.Flush(flushTimeout)
			}
			return nil
		},
	})
}

// clientOptions never samples health checks
func clientOptions(cfg config.SentryConfig) sentry.ClientOptions {
	return sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.SampleRate,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			if ctx.Span != nil && ctx.Span.Name == "GET /health" {
				return 0
			}
			return cfg.SampleRate
		}),
	}
}

func NewSentryService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) IsEnabled() bool {
	return s != nil && s.cfg.Sentry.Enabled
}

// CaptureException reports err on the request's hub with its hint and
// reportable details attached
func (s *Service) CaptureException(ctx context.Context, err error) {
	if !s.IsEnabled() || err == nil {
		return
	}

	hub := hubFrom(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		if requestID := types.GetRequestID(ctx); requestID != "" {
			scope.SetTag("request_id", requestID)
		}
		scope.SetTag("hint", ierr.DisplayMessage(err))
		if details := ierr.SafeDetails(err); len(details) > 0 {
			scope.SetContext("details", sentry.Context(details))
		}
		hub.CaptureException(err)
	})
}

func (s *Service) AddBreadcrumb(ctx context.Context, category, message string, data map[string]interface{}) {
	if !s.IsEnabled() {
		return
	}
	hubFrom(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Level:    sentry.LevelInfo,
		Data:     data,
	}, nil)
}

// StartSpan starts a child span of the request transaction. The returned
// finish func is always safe to call.
func (s *Service) StartSpan(ctx context.Context, op string, data map[string]interface{}) (context.Context, func()) {
	if !s.IsEnabled() {
		return ctx, func() {}
	}

	span := sentry.StartSpan(ctx, op)
	span.Description = op
	for k, v := range data {
		span.SetData(k, v)
	}
	return span.Context(), span.Finish
}

func hubFrom(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}
