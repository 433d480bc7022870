package kafka

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cockroachdb/errors"
	"github.com/complysense/complysense/internal/config"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/pubsub"
)

type PubSub struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *logger.Logger
}

// NewPubSub creates a new kafka-based pubsub
func NewPubSub(cfg *config.Configuration, logger *logger.Logger) (pubsub.PubSub, error) {
	saramaConfig := GetSaramaConfig(cfg)
	marshaler := newMarshaler()

	publisher, err := kafka.NewPublisher(
		kafka.PublisherConfig{
			Brokers:               cfg.Kafka.Brokers,
			Marshaler:             marshaler,
			OverwriteSaramaConfig: saramaConfig,
		},
		watermill.NopLogger{},
	)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create kafka publisher").
			Mark(ierr.ErrSystem)
	}

	subscriber, err := kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:               cfg.Kafka.Brokers,
			ConsumerGroup:         cfg.Kafka.ConsumerGroup,
			Unmarshaler:           marshaler,
			OverwriteSaramaConfig: saramaConfig,
		},
		watermill.NopLogger{},
	)
	if err != nil {
		_ = publisher.Close()
		return nil, ierr.WithError(err).
			WithHint("Failed to create kafka subscriber").
			Mark(ierr.ErrSystem)
	}

	logger.Infow("kafka pubsub ready", "brokers", cfg.Kafka.Brokers)

	return &PubSub{
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger,
	}, nil
}

// Publish publishes a message to the topic
func (p *PubSub) Publish(_ context.Context, topic string, msg *message.Message) error {
	return p.publisher.Publish(topic, msg)
}

// Subscribe starts consuming messages from the topic
func (p *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.subscriber.Subscribe(ctx, topic)
}

// Close closes the pubsub
func (p *PubSub) Close() error {
	return errors.CombineErrors(p.publisher.Close(), p.subscriber.Close())
}
