package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/complysense/complysense/internal/types"
)

// Metadata keys carried by every report event
const (
	MetadataReportID  = "report_id"
	MetadataRequestID = "request_id"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
	Close() error
}

// Subscriber matches watermill's message.Subscriber so a PubSub can back a message.Router
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

type PubSub interface {
	Publisher
	Subscriber
}

// NewReportMessage wraps an encoded event about one report, carrying the
// request id from ctx so consumers log under the same id
func NewReportMessage(ctx context.Context, reportID string, payload []byte) *message.Message {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataReportID, reportID)
	if requestID := types.GetRequestID(ctx); requestID != "" {
		msg.Metadata.Set(MetadataRequestID, requestID)
	}
	return msg
}

// MessageContext rebuilds a request context from the message metadata
func MessageContext(msg *message.Message) context.Context {
	return types.SetRequestID(context.Background(), msg.Metadata.Get(MetadataRequestID))
}
