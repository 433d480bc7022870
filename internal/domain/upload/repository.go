package upload

import "context"

// Repository persists raw uploads
type Repository interface {
	Create(ctx context.Context, upload *Upload) error
	Get(ctx context.Context, id string) (*Upload, error)
}
