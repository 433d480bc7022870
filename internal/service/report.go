package service

import (
	"context"

	"github.com/complysense/complysense/internal/cache"
	"github.com/complysense/complysense/internal/domain/report"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/types"
)

type ReportService interface {
	// GetReport loads a report by id or by its RPT- short code
	GetReport(ctx context.Context, idOrShortCode string) (*report.Record, error)
}

type reportService struct {
	ServiceParams
}

func NewReportService(params ServiceParams) ReportService {
	return &reportService{ServiceParams: params}
}

func (s *reportService) GetReport(ctx context.Context, idOrShortCode string) (*report.Record, error) {
	if idOrShortCode == "" {
		return nil, ierr.NewError("report id is required").
			WithHint("Report not found.").
			Mark(ierr.ErrNotFound)
	}

	key := cache.ReportKey(idOrShortCode)
	if rec, ok := cache.GetAs[*report.Record](ctx, s.Cache, key); ok {
		return rec, nil
	}

	var (
		rec *report.Record
		err error
	)
	if types.IsReportShortCode(idOrShortCode) {
		rec, err = s.ReportRepo.GetByShortCode(ctx, idOrShortCode)
	} else {
		rec, err = s.ReportRepo.Get(ctx, idOrShortCode)
	}
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, key, rec, 0)
	return rec, nil
}
