package service

import (
	"context"

	"github.com/complysense/complysense/internal/api/dto"
	"github.com/complysense/complysense/internal/domain/upload"
	ierr "github.com/complysense/complysense/internal/errors"
)

type UploadService interface {
	CreateUpload(ctx context.Context, req *dto.CreateUploadRequest) (*dto.UploadResponse, error)
	GetUpload(ctx context.Context, id string) (*upload.Upload, error)
}

type uploadService struct {
	ServiceParams
}

func NewUploadService(params ServiceParams) UploadService {
	return &uploadService{ServiceParams: params}
}

func (s *uploadService) CreateUpload(ctx context.Context, req *dto.CreateUploadRequest) (*dto.UploadResponse, error) {
	if req == nil {
		return nil, ierr.NewError("upload request is required").
			WithHint("File is empty.").
			Mark(ierr.ErrValidation)
	}

	if err := req.Validate(s.Config.Analysis.MaxUploadBytes); err != nil {
		return nil, err
	}

	u := req.ToUpload()
	if err := s.UploadRepo.Create(ctx, u); err != nil {
		s.Logger.Errorw("failed to store upload", "error", err, "filename", u.Filename)
		return nil, err
	}

	s.Logger.Infow("upload stored",
		"upload_id", u.ID,
		"source", u.Source,
		"filename", u.Filename,
		"size_bytes", u.SizeBytes,
	)

	return &dto.UploadResponse{UploadID: u.ID}, nil
}

func (s *uploadService) GetUpload(ctx context.Context, id string) (*upload.Upload, error) {
	if id == "" {
		return nil, ierr.NewError("upload id is required").
			WithHint("Upload ID is required").
			Mark(ierr.ErrValidation)
	}
	return s.UploadRepo.Get(ctx, id)
}
