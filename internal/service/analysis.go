package service

import (
	"context"

	"github.com/complysense/complysense/internal/api/dto"
	"github.com/complysense/complysense/internal/cache"
	"github.com/complysense/complysense/internal/domain/report"
	"github.com/complysense/complysense/internal/domain/upload"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/pubsub"
	"github.com/complysense/complysense/internal/s3"
	"github.com/complysense/complysense/internal/types"
	jsoniter "github.com/json-iterator/go"
	"github.com/sourcegraph/conc/pool"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type AnalysisService interface {
	Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error)
}

type analysisService struct {
	ServiceParams
}

func NewAnalysisService(params ServiceParams) AnalysisService {
	return &analysisService{ServiceParams: params}
}

// Analyze runs the readiness engine over a stored upload. Repeating a request
// with the same upload and answers returns the report generated the first time.
func (s *analysisService) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Questionnaire == nil {
		req.Questionnaire = types.Questionnaire{}
	}

	idempotencyKey := s.Idempotency.AnalysisKey(req.UploadID, req.Questionnaire)
	if rec := s.previousResult(ctx, idempotencyKey); rec != nil {
		s.Logger.Debugw("serving previously generated report",
			"upload_id", req.UploadID,
			"report_id", rec.ID,
		)
		return dto.NewAnalyzeResponse(rec), nil
	}

	u, err := s.UploadRepo.Get(ctx, req.UploadID)
	if err != nil {
		return nil, err
	}

	rpt, err := s.runEngine(ctx, u, req.Questionnaire)
	if err != nil {
		s.Sentry.CaptureException(ctx, err)
		s.Logger.Errorw("readiness analysis failed", "upload_id", u.ID, "error", err)
		return nil, err
	}

	rec := report.NewRecord(u.ID, req.Questionnaire, rpt)
	if err := s.ReportRepo.Create(ctx, rec); err != nil {
		s.Logger.Errorw("failed to store report", "upload_id", u.ID, "error", err)
		return nil, err
	}

	s.Cache.Set(ctx, cache.AnalysisKey(idempotencyKey), rec.ID, 0)
	s.Cache.Set(ctx, cache.ReportKey(rec.ID), rec, 0)

	s.Logger.Infow("report generated",
		"report_id", rec.ID,
		"short_code", rec.ShortCode,
		"upload_id", u.ID,
		"rows_parsed", rpt.Meta.RowsParsed,
		"format", rpt.Meta.Format,
		"overall", rpt.Scores.Overall,
	)

	s.distribute(ctx, u, rec)

	return dto.NewAnalyzeResponse(rec), nil
}

// previousResult returns the report generated for the same request, if any
func (s *analysisService) previousResult(ctx context.Context, idempotencyKey string) *report.Record {
	reportID, ok := cache.GetAs[string](ctx, s.Cache, cache.AnalysisKey(idempotencyKey))
	if !ok {
		return nil
	}

	rec, err := s.ReportRepo.Get(ctx, reportID)
	if err != nil {
		s.Logger.Warnw("cached report missing from store", "report_id", reportID, "error", err)
		return nil
	}
	return rec
}

func (s *analysisService) runEngine(ctx context.Context, u *upload.Upload, questionnaire types.Questionnaire) (*report.Report, error) {
	spanCtx, finish := s.Sentry.StartSpan(ctx, "readiness.analyze", map[string]interface{}{
		"upload_id":  u.ID,
		"size_bytes": u.SizeBytes,
	})
	defer finish()

	var (
		rpt *report.Report
		err error
	)
	s.Pyroscope.TagWrapper(spanCtx, map[string]string{"operation": "readiness.analyze"}, func(context.Context) {
		rpt, err = s.Engine.SafeAnalyze(u.Content(), questionnaire)
	})
	return rpt, err
}

// distribute archives the upload and report and announces the new report.
// Failures here never fail the request.
func (s *analysisService) distribute(ctx context.Context, u *upload.Upload, rec *report.Record) {
	p := pool.New().WithErrors()

	if s.S3 != nil {
		p.Go(func() error {
			body, err := json.Marshal(rec.Report)
			if err != nil {
				return ierr.WithError(err).WithHint("failed to encode report").Mark(ierr.ErrSystem)
			}
			return s.S3.UploadDocument(ctx, s3.NewReportDocument(rec.ID, body))
		})
		p.Go(func() error {
			return s.S3.UploadDocument(ctx, s3.NewUploadDocument(u.ID, u.Content(), rec.Report.Meta.Format))
		})
	}

	if s.PubSub != nil {
		p.Go(func() error {
			return s.publishGenerated(ctx, rec)
		})
	}

	if err := p.Wait(); err != nil {
		s.Logger.Warnw("report distribution incomplete",
			"report_id", rec.ID,
			"error", err,
		)
	}
}

func (s *analysisService) publishGenerated(ctx context.Context, rec *report.Record) error {
	payload, err := json.Marshal(report.NewGeneratedEvent(rec))
	if err != nil {
		return ierr.WithError(err).WithHint("failed to encode report event").Mark(ierr.ErrSystem)
	}

	msg := pubsub.NewReportMessage(ctx, rec.ID, payload)
	return s.PubSub.Publish(ctx, s.Config.PubSub.ReportTopic, msg)
}
