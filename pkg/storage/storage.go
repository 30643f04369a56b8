package storage

import (
	"context"

	"github.com/mosajjal/findinghec/pkg/models"
)

// StorageBackend defines the interface for the failure archive
type StorageBackend interface {
	// Store saves events that could not be delivered to HEC
	Store(ctx context.Context, events []*models.Event) error

	// Close cleans up resources
	Close() error
}

// ProviderS3 is the only supported archive provider
const ProviderS3 = "s3"

// StorageConfig holds common storage configuration
type StorageConfig struct {
	Provider string // empty means s3
	URL      string
}
