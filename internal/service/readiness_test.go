package service

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/complysense/complysense/internal/api/dto"
	"github.com/complysense/complysense/internal/cache"
	"github.com/complysense/complysense/internal/domain/report"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/s3"
	"github.com/complysense/complysense/internal/testutil"
	"github.com/complysense/complysense/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

const sampleInvoices = `[{"id":"INV-1","date":"2025-01-01","currency":"AED","seller_trn":"100","buyer_trn":"200",` +
	`"total_excl_vat":100,"vat_amount":5,"total_incl_vat":105,` +
	`"lines":[{"sku":"A","qty":2,"unitPrice":50,"lineTotal":100}]}]`

type ReadinessServiceSuite struct {
	testutil.BaseServiceTestSuite
	uploads  UploadService
	analysis AnalysisService
	reports  ReportService
	events   ReportEventService
}

func TestReadinessServices(t *testing.T) {
	suite.Run(t, new(ReadinessServiceSuite))
}

func (s *ReadinessServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetEngine(),
		s.GetCache(),
		s.GetStores().UploadRepo,
		s.GetStores().ReportRepo,
		s.GetDocuments(),
		s.GetPubSub(),
		nil,
		nil,
	)
	s.uploads = NewUploadService(params)
	s.analysis = NewAnalysisService(params)
	s.reports = NewReportService(params)
	s.events = NewReportEventService(params)
}

func (s *ReadinessServiceSuite) uploadText(text string) string {
	resp, err := s.uploads.CreateUpload(s.GetContext(), dto.NewTextUploadRequest(&dto.CreateTextUploadRequest{
		Text: lo.ToPtr(text),
	}))
	s.Require().NoError(err)
	return resp.UploadID
}

func (s *ReadinessServiceSuite) TestCreateUpload() {
	tests := []struct {
		name     string
		req      *dto.CreateUploadRequest
		wantHint string
	}{
		{
			name: "pasted text",
			req:  dto.NewTextUploadRequest(&dto.CreateTextUploadRequest{Text: lo.ToPtr(sampleInvoices)}),
		},
		{
			name: "csv file",
			req: &dto.CreateUploadRequest{
				Filename:    "invoices.csv",
				Source:      types.UploadSourceFile,
				ContentType: "text/csv",
				Content:     []byte("inv_no,date\nINV-1,2025-01-01\n"),
			},
		},
		{
			name:     "missing text",
			req:      dto.NewTextUploadRequest(&dto.CreateTextUploadRequest{}),
			wantHint: "Text content is missing.",
		},
		{
			name: "empty file",
			req: &dto.CreateUploadRequest{
				Filename: "invoices.json",
				Source:   types.UploadSourceFile,
			},
			wantHint: "File is empty.",
		},
		{
			name: "binary file",
			req: &dto.CreateUploadRequest{
				Filename: "scan.png",
				Source:   types.UploadSourceFile,
				Content:  []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
			},
			wantHint: "Only JSON or CSV text can be analysed",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.uploads.CreateUpload(s.GetContext(), tt.req)
			if tt.wantHint != "" {
				s.Error(err)
				s.True(ierr.IsValidation(err))
				s.Equal(tt.wantHint, ierr.DisplayMessage(err))
				return
			}

			s.NoError(err)
			stored, err := s.uploads.GetUpload(s.GetContext(), resp.UploadID)
			s.NoError(err)
			s.Equal(tt.req.Content, stored.Content())
			s.Equal(tt.req.Source, stored.Source)
		})
	}
}

func (s *ReadinessServiceSuite) TestTextUploadFilename() {
	id := s.uploadText(sampleInvoices)

	stored, err := s.uploads.GetUpload(s.GetContext(), id)
	s.Require().NoError(err)
	s.Equal(types.DefaultTextUploadFilename, stored.Filename)
}

func (s *ReadinessServiceSuite) TestAnalyze() {
	uploadID := s.uploadText(sampleInvoices)

	resp, err := s.analysis.Analyze(s.GetContext(), &dto.AnalyzeRequest{
		UploadID:      uploadID,
		Questionnaire: types.Questionnaire{"webhooks": true},
	})
	s.Require().NoError(err)

	s.NotEmpty(resp.ReportID)
	s.Contains(resp.ShortCode, types.SHORT_ID_PREFIX_REPORT)
	s.Equal(1, resp.Report.Meta.RowsParsed)
	s.Equal(types.FileTypeJSON, resp.Report.Meta.Format)
	s.Len(resp.Report.RuleFindings, 5)

	stored, err := s.GetStores().ReportRepo.Get(s.GetContext(), resp.ReportID)
	s.Require().NoError(err)
	s.Equal(uploadID, stored.UploadID)
	s.Equal(types.Questionnaire{"webhooks": true}, stored.Questionnaire)

	archived, err := s.GetDocuments().Exists(s.GetContext(), resp.ReportID, s3.DocumentTypeReport, s3.DocumentKindJSON)
	s.NoError(err)
	s.True(archived)

	archived, err = s.GetDocuments().Exists(s.GetContext(), uploadID, s3.DocumentTypeUpload, s3.DocumentKindJSON)
	s.NoError(err)
	s.True(archived)

	messages := s.GetPubSub().GetMessages(s.GetConfig().PubSub.ReportTopic)
	s.Require().Len(messages, 1)
	s.Equal(resp.ReportID, messages[0].Metadata.Get("report_id"))

	var event report.GeneratedEvent
	s.Require().NoError(json.Unmarshal(messages[0].Payload, &event))
	s.Equal(resp.ShortCode, event.ShortCode)
	s.Equal(resp.Report.Scores.Overall, event.Overall)
}

func (s *ReadinessServiceSuite) TestAnalyzeIsIdempotent() {
	uploadID := s.uploadText(sampleInvoices)
	req := func(q types.Questionnaire) *dto.AnalyzeRequest {
		return &dto.AnalyzeRequest{UploadID: uploadID, Questionnaire: q}
	}

	first, err := s.analysis.Analyze(s.GetContext(), req(types.Questionnaire{"retries": true, "webhooks": false}))
	s.Require().NoError(err)

	second, err := s.analysis.Analyze(s.GetContext(), req(types.Questionnaire{"webhooks": false, "retries": true}))
	s.Require().NoError(err)
	s.Equal(first.ReportID, second.ReportID)
	s.Equal(first.Report, second.Report)
	s.Len(s.GetPubSub().GetMessages(s.GetConfig().PubSub.ReportTopic), 1)

	third, err := s.analysis.Analyze(s.GetContext(), req(types.Questionnaire{"retries": true, "webhooks": true}))
	s.Require().NoError(err)
	s.NotEqual(first.ReportID, third.ReportID)
}

func (s *ReadinessServiceSuite) TestAnalyzeUnparseableUpload() {
	uploadID := s.uploadText("not invoices at all")

	resp, err := s.analysis.Analyze(s.GetContext(), &dto.AnalyzeRequest{UploadID: uploadID})
	s.Require().NoError(err)
	s.Equal(0, resp.Report.Meta.RowsParsed)
	s.Equal(types.FileTypeNone, resp.Report.Meta.Format)
	s.Equal([]string{"All fields missing"}, resp.Report.Coverage.Missing)

	archived, err := s.GetDocuments().Exists(s.GetContext(), uploadID, s3.DocumentTypeUpload, s3.DocumentKindText)
	s.NoError(err)
	s.True(archived)
}

func (s *ReadinessServiceSuite) TestAnalyzeErrors() {
	_, err := s.analysis.Analyze(s.GetContext(), &dto.AnalyzeRequest{})
	s.True(ierr.IsValidation(err))

	_, err = s.analysis.Analyze(s.GetContext(), &dto.AnalyzeRequest{UploadID: "r_01HZX"})
	s.True(ierr.IsValidation(err))
	s.Equal("must be an upload id", ierr.SafeDetails(err)["uploadId"])

	_, err = s.analysis.Analyze(s.GetContext(), &dto.AnalyzeRequest{UploadID: "u_missing"})
	s.True(ierr.IsNotFound(err))
	s.Equal("Upload not found.", ierr.DisplayMessage(err))
}

func (s *ReadinessServiceSuite) TestGetReport() {
	uploadID := s.uploadText(sampleInvoices)
	resp, err := s.analysis.Analyze(s.GetContext(), &dto.AnalyzeRequest{UploadID: uploadID})
	s.Require().NoError(err)

	s.GetCache().Flush(s.GetContext())

	byID, err := s.reports.GetReport(s.GetContext(), resp.ReportID)
	s.Require().NoError(err)
	s.Equal(resp.Report, byID.Report)

	byCode, err := s.reports.GetReport(s.GetContext(), resp.ShortCode)
	s.Require().NoError(err)
	s.Equal(resp.ReportID, byCode.ID)

	_, err = s.reports.GetReport(s.GetContext(), "r_missing")
	s.True(ierr.IsNotFound(err))

	_, err = s.reports.GetReport(s.GetContext(), "")
	s.True(ierr.IsNotFound(err))
}

func (s *ReadinessServiceSuite) TestHandleGenerated() {
	uploadID := s.uploadText(sampleInvoices)
	resp, err := s.analysis.Analyze(s.GetContext(), &dto.AnalyzeRequest{UploadID: uploadID})
	s.Require().NoError(err)

	messages := s.GetPubSub().GetMessages(s.GetConfig().PubSub.ReportTopic)
	s.Require().Len(messages, 1)

	s.GetCache().Flush(s.GetContext())
	s.Require().NoError(s.events.HandleGenerated(messages[0]))

	cached, ok := s.GetCache().Get(s.GetContext(), cache.ReportKey(resp.ShortCode))
	s.Require().True(ok)
	s.Equal(resp.ReportID, cached.(*report.Record).ID)
}

func (s *ReadinessServiceSuite) TestHandleGeneratedErrors() {
	tests := []struct {
		name    string
		payload string
		check   func(error) bool
	}{
		{"malformed payload", `{"report_id":`, ierr.IsValidation},
		{"missing report id", `{"overall":10}`, ierr.IsValidation},
		{"unknown report", `{"report_id":"r_missing"}`, ierr.IsNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			err := s.events.HandleGenerated(message.NewMessage(watermill.NewUUID(), []byte(tt.payload)))
			s.Error(err)
			s.True(tt.check(err))
		})
	}
}
