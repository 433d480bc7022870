package report

import "context"

// Repository persists generated reports
type Repository interface {
	Create(ctx context.Context, record *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	GetByShortCode(ctx context.Context, shortCode string) (*Record, error)
}
