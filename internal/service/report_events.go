package service

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/complysense/complysense/internal/cache"
	"github.com/complysense/complysense/internal/domain/report"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/pubsub"
	pubsubRouter "github.com/complysense/complysense/internal/pubsub/router"
	"github.com/complysense/complysense/internal/types"
)

const reportEventsHandlerName = "report_generated_handler"

// ReportEventService consumes report.generated messages. Each message warms
// the report cache of the consuming instance and leaves an audit log line.
type ReportEventService interface {
	RegisterHandler(router *pubsubRouter.Router)
	HandleGenerated(msg *message.Message) error
}

type reportEventService struct {
	ServiceParams
}

func NewReportEventService(params ServiceParams) ReportEventService {
	return &reportEventService{ServiceParams: params}
}

// RegisterHandler registers a handler for report events
func (s *reportEventService) RegisterHandler(router *pubsubRouter.Router) {
	if s.PubSub == nil {
		s.Logger.Warn("pubsub disabled, report events are not consumed")
		return
	}

	router.AddNoPublishHandler(
		reportEventsHandlerName,
		s.Config.PubSub.ReportTopic,
		s.PubSub,
		s.HandleGenerated,
	)
}

func (s *reportEventService) HandleGenerated(msg *message.Message) error {
	ctx := pubsub.MessageContext(msg)

	var event report.GeneratedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return ierr.WithError(err).
			WithHint("Malformed report event").
			WithReportableDetails(map[string]interface{}{"message_uuid": msg.UUID}).
			Mark(ierr.ErrValidation)
	}
	if event.ReportID == "" {
		return ierr.NewError("report event without report id").
			WithHint("Malformed report event").
			WithReportableDetails(map[string]interface{}{"message_uuid": msg.UUID}).
			Mark(ierr.ErrValidation)
	}

	rec, err := s.ReportRepo.Get(ctx, event.ReportID)
	if err != nil {
		return err
	}

	s.Cache.Set(ctx, cache.ReportKey(rec.ID), rec, 0)
	s.Cache.Set(ctx, cache.ReportKey(rec.ShortCode), rec, 0)

	s.Sentry.AddBreadcrumb(ctx, "report", "report generated", map[string]interface{}{
		"report_id": rec.ID,
		"overall":   event.Overall,
	})
	s.Logger.Infow("report event consumed",
		"report_id", rec.ID,
		"short_code", rec.ShortCode,
		"upload_id", event.UploadID,
		"overall", event.Overall,
		"rows_parsed", event.RowsParsed,
		"format", event.Format,
		"request_id", types.GetRequestID(ctx),
	)
	return nil
}
