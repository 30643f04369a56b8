package hec

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/mosajjal/findinghec/pkg/models"
)

// DryRunSink logs what would have been posted and never touches the network
type DryRunSink struct {
	endpoint string
	logger   zerolog.Logger
}

// NewDryRunSink creates a dry-run sink that reports endpoint as the destination
func NewDryRunSink(endpoint string, logger zerolog.Logger) *DryRunSink {
	return &DryRunSink{endpoint: endpoint, logger: logger}
}

// Send logs the pretty printed payload. It always returns nil.
func (d *DryRunSink) Send(_ context.Context, event *models.Event) error {
	pretty, err := json.MarshalIndent(event.Payload(), "", "  ")
	if err != nil {
		d.logger.Warn().Err(err).Str("endpoint", d.endpoint).Msg("DRY-RUN: could not encode payload")
		return nil
	}
	d.logger.Info().
		Int("bytes", len(pretty)).
		Str("endpoint", d.endpoint).
		Msgf("DRY-RUN: would POST %d bytes to %s", len(pretty), d.endpoint)
	d.logger.Info().Str("payload", string(pretty)).Msg("DRY-RUN payload")
	return nil
}

// Mode implements Sink
func (d *DryRunSink) Mode() string {
	return "dry-run"
}
