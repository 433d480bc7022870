package kafka

import (
	"crypto/tls"
	"time"

	"github.com/Shopify/sarama"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/pubsub"
)

// PartitionKeyMetadata picks the partition, so events about one report stay in order
const PartitionKeyMetadata = pubsub.MetadataReportID

// GetSaramaConfig returns the client settings shared by the report event
// publisher and subscriber
func GetSaramaConfig(cfg *config.Configuration) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Version = sarama.V2_1_0_0
	sc.ClientID = cfg.Kafka.ClientID

	configureProducer(sc)
	configureConsumer(sc)
	configureSecurity(sc, cfg.Kafka)

	return sc
}

func configureProducer(sc *sarama.Config) {
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Retry.Backoff = 250 * time.Millisecond
}

// configureConsumer starts a new group from the oldest offset so events
// published before the first deploy of a consumer are not skipped
func configureConsumer(sc *sarama.Config) {
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	sc.Consumer.Offsets.AutoCommit.Enable = true
	sc.Consumer.Offsets.AutoCommit.Interval = 5 * time.Second
	sc.Consumer.Offsets.Retry.Max = 3
}

func configureSecurity(sc *sarama.Config, kc config.KafkaConfig) {
	if kc.TLS || kc.UseSASL {
		sc.Net.TLS.Enable = true
		sc.Net.TLS.Config = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if !kc.UseSASL {
		return
	}

	sc.Net.SASL.Enable = true
	sc.Net.SASL.Mechanism = sarama.SASLMechanism(kc.SASLMechanism)
	sc.Net.SASL.User = kc.SASLUser
	sc.Net.SASL.Password = kc.SASLPassword
}

// newMarshaler partitions by report id and falls back to the message uuid
func newMarshaler() kafka.MarshalerUnmarshaler {
	return kafka.NewWithPartitioningMarshaler(func(_ string, msg *message.Message) (string, error) {
		if key := msg.Metadata.Get(PartitionKeyMetadata); key != "" {
			return key, nil
		}
		return msg.UUID, nil
	})
}
