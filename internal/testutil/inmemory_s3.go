package testutil

import (
	"context"
	"fmt"
	"sync"

	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/s3"
)

// InMemoryDocumentStore implements s3.Service over a map keyed like the
// bucket layout
type InMemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{docs: make(map[string][]byte)}
}

func documentKey(id string, docType s3.DocumentType, docKind s3.DocumentKind) string {
	return fmt.Sprintf("%s/%s.%s", docType, id, docKind)
}

func (s *InMemoryDocumentStore) UploadDocument(_ context.Context, document *s3.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[documentKey(document.ID, document.Type, document.Kind)] = append([]byte(nil), document.Data...)
	return nil
}

func (s *InMemoryDocumentStore) GetPresignedUrl(_ context.Context, id string, docType s3.DocumentType, docKind s3.DocumentKind) (string, error) {
	return "memory://" + documentKey(id, docType, docKind), nil
}

func (s *InMemoryDocumentStore) GetDocument(_ context.Context, id string, docType s3.DocumentType, docKind s3.DocumentKind) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.docs[documentKey(id, docType, docKind)]
	if !ok {
		return nil, ierr.NewErrorf("document %s not found", id).
			WithHint("Document not found").
			Mark(ierr.ErrNotFound)
	}
	return data, nil
}

func (s *InMemoryDocumentStore) Exists(_ context.Context, id string, docType s3.DocumentType, docKind s3.DocumentKind) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[documentKey(id, docType, docKind)]
	return ok, nil
}

func (s *InMemoryDocumentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string][]byte)
}
