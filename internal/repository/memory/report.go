package memory

import (
	"context"
	"sync"

	"github.com/complysense/complysense/internal/domain/report"
	ierr "github.com/complysense/complysense/internal/errors"
)

// ReportStore keeps report records in process memory, indexed by id and short code
type ReportStore struct {
	mu          sync.RWMutex
	reports     map[string]*report.Record
	byShortCode map[string]string
}

func NewReportStore() *ReportStore {
	return &ReportStore{
		reports:     make(map[string]*report.Record),
		byShortCode: make(map[string]string),
	}
}

func (s *ReportStore) Create(_ context.Context, rec *report.Record) error {
	if rec == nil {
		return ierr.NewError("report cannot be nil").
			WithHint("Report is required").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, idTaken := s.reports[rec.ID]
	_, codeTaken := s.byShortCode[rec.ShortCode]
	if idTaken || codeTaken {
		return ierr.NewError("report already exists").
			WithHint("report already exists").
			WithReportableDetails(map[string]interface{}{
				"id":         rec.ID,
				"short_code": rec.ShortCode,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	stored := *rec
	s.reports[rec.ID] = &stored
	s.byShortCode[rec.ShortCode] = rec.ID
	return nil
}

func (s *ReportStore) Get(_ context.Context, id string) (*report.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id)
}

func (s *ReportStore) GetByShortCode(_ context.Context, shortCode string) (*report.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byShortCode[shortCode]
	if !ok {
		return nil, notFound("short_code", shortCode)
	}
	return s.get(id)
}

func (s *ReportStore) get(id string) (*report.Record, error) {
	rec, ok := s.reports[id]
	if !ok {
		return nil, notFound("report_id", id)
	}
	out := *rec
	return &out, nil
}

// Clear removes every report
func (s *ReportStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = make(map[string]*report.Record)
	s.byShortCode = make(map[string]string)
}

func notFound(key, value string) error {
	return ierr.NewError("report not found").
		WithHint("Report not found.").
		WithReportableDetails(map[string]interface{}{key: value}).
		Mark(ierr.ErrNotFound)
}
