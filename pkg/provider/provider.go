package provider

import (
	"context"

	"github.com/mosajjal/findinghec/pkg/models"
)

// CloudProvider turns a raw function invocation payload into records
type CloudProvider interface {
	// Name returns the provider name
	Name() string

	// ParseBatch decodes the payload and returns the records it carries, in order
	ParseBatch(ctx context.Context, payload []byte) ([]models.Record, error)
}
