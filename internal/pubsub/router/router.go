package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/pubsub"
	"github.com/complysense/complysense/internal/sentry"
)

const poisonTopic = "report_events_dlq"

// Router manages all message routing
type Router struct {
	router *message.Router
	logger *logger.Logger
	sentry *sentry.Service
	config *config.ConsumerConfig
}

// NewRouter creates a new message router
func NewRouter(cfg *config.Configuration, logger *logger.Logger, sentry *sentry.Service) (*Router, error) {
	router, err := message.NewRouter(
		message.RouterConfig{},
		watermill.NopLogger{},
	)
	if err != nil {
		return nil, err
	}

	poisonQueue, err := middleware.PoisonQueue(getTempDLQ(), poisonTopic)
	if err != nil {
		return nil, err
	}

	consumer := cfg.PubSub.Consumer

	// Add middleware in correct order
	router.AddMiddleware(
		poisonQueue,
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:          consumer.MaxRetries,
			InitialInterval:     consumer.InitialInterval,
			MaxInterval:         consumer.MaxInterval,
			Multiplier:          consumer.Multiplier,
			MaxElapsedTime:      consumer.MaxElapsedTime,
			RandomizationFactor: 0.5,
			Logger:              watermill.NopLogger{},
			OnRetryHook: func(retryNum int, delay time.Duration) {
				logger.Infow("retrying message",
					"retry_number", retryNum,
					"max_retries", consumer.MaxRetries,
					"delay", delay,
				)
			},
		}.Middleware,
	)

	return &Router{
		router: router,
		logger: logger,
		sentry: sentry,
		config: &consumer,
	}, nil
}

// AddNoPublishHandler adds a handler that doesn't publish messages. Errors
// that cannot succeed on retry are logged and the message is acked.
func (r *Router) AddNoPublishHandler(
	handlerName string,
	topicName string,
	subscriber message.Subscriber,
	handlerFunc func(msg *message.Message) error,
	middlewares ...message.HandlerMiddleware,
) {
	handler := r.router.AddNoPublisherHandler(
		handlerName,
		topicName,
		subscriber,
		func(msg *message.Message) error {
			err := handlerFunc(msg)
			if err == nil {
				return nil
			}

			r.logger.Errorw("handler failed",
				"handler", handlerName,
				"error", err,
				"correlation_id", middleware.MessageCorrelationID(msg),
				"message_uuid", msg.UUID,
			)
			if !shouldRetry(r.logger, err) {
				return nil
			}
			r.sentry.CaptureException(pubsub.MessageContext(msg), err)
			return err
		},
	)

	for _, middleware := range middlewares {
		handler.AddMiddleware(middleware)
	}
}

// Running is closed once every handler is subscribed
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Run starts the router and blocks until it is closed
func (r *Router) Run() error {
	r.logger.Info("starting router")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return r.router.Run(ctx)
}

// Close gracefully shuts down the router
func (r *Router) Close() error {
	r.logger.Info("closing router")
	return r.router.Close()
}

// getTempDLQ keeps poisoned messages in process; nothing consumes them
func getTempDLQ() *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{
			Persistent: false,
		},
		watermill.NopLogger{},
	)
}
