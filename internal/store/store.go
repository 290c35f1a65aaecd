package store

import "context"

// Store defines the interface for sample dataset storage
type Store interface {
	CreateSample(ctx context.Context, sample Sample) (*Sample, error)
	GetSample(ctx context.Context, name string) (*Sample, error)
	ListSamples(ctx context.Context) ([]*Sample, error)
	DeleteSample(ctx context.Context, name string) error

	// Lifecycle
	Close() error
}
