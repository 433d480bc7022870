package memory

import (
	"context"
	"sync"

	"github.com/complysense/complysense/internal/domain/upload"
	ierr "github.com/complysense/complysense/internal/errors"
)

// UploadStore keeps uploads in process memory
type UploadStore struct {
	mu      sync.RWMutex
	uploads map[string]*upload.Upload
}

func NewUploadStore() *UploadStore {
	return &UploadStore{
		uploads: make(map[string]*upload.Upload),
	}
}

func (s *UploadStore) Create(_ context.Context, u *upload.Upload) error {
	if u == nil {
		return ierr.NewError("upload cannot be nil").
			WithHint("Upload is required").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.uploads[u.ID]; exists {
		return ierr.NewError("upload already exists").
			WithHint("upload already exists").
			WithReportableDetails(map[string]interface{}{"id": u.ID}).
			Mark(ierr.ErrAlreadyExists)
	}

	stored := *u
	s.uploads[u.ID] = &stored
	return nil
}

func (s *UploadStore) Get(_ context.Context, id string) (*upload.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.uploads[id]
	if !ok {
		return nil, ierr.NewError("upload not found").
			WithHint("Upload not found.").
			WithReportableDetails(map[string]interface{}{"upload_id": id}).
			Mark(ierr.ErrNotFound)
	}

	out := *u
	return &out, nil
}

// Clear removes every upload
func (s *UploadStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = make(map[string]*upload.Upload)
}
