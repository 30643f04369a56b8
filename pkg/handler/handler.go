package handler

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/mosajjal/findinghec/pkg/hec"
	"github.com/mosajjal/findinghec/pkg/models"
	"github.com/mosajjal/findinghec/pkg/provider"
	"github.com/mosajjal/findinghec/pkg/storage"
)

// StatusOK is the only status an invocation ever reports
const StatusOK = "ok"

// maxLoggedPayload is how much of the inbound payload goes to the debug log
const maxLoggedPayload = 1000

// Response is returned to the runtime when every record was delivered
type Response struct {
	Status      string `json:"status"`
	RecordsSent int    `json:"records_sent"`
}

// Handler forwards findings to a sink, one record at a time
type Handler struct {
	provider   provider.CloudProvider
	normalizer models.Normalizer
	sink       hec.Sink
	archive    storage.StorageBackend
	logger     zerolog.Logger
}

// Option configures a Handler
type Option func(*Handler)

// WithArchive stores undelivered records when a delivery fails
func WithArchive(archive storage.StorageBackend) Option {
	return func(h *Handler) {
		h.archive = archive
	}
}

// WithClock overrides the clock used to timestamp events
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.normalizer.Now = now
	}
}

// New creates a handler
func New(p provider.CloudProvider, normalizer models.Normalizer, sink hec.Sink, logger zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{
		provider:   p,
		normalizer: normalizer,
		sink:       sink,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle delivers every record of the payload in order. The first failure
// stops the invocation and is returned unchanged; records after it are not
// attempted.
func (h *Handler) Handle(ctx context.Context, payload []byte) (Response, error) {
	if e := h.logger.Debug(); e.Enabled() {
		e.Str("event", truncate(payload, maxLoggedPayload)).Msg("Received event")
	}

	records, err := h.provider.ParseBatch(ctx, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("provider", h.provider.Name()).Msg("Failed to parse event")
		return Response{}, err
	}

	for i, record := range records {
		event := h.normalizer.Normalize(record)
		if err := h.sink.Send(ctx, event); err != nil {
			h.logger.Error().
				Err(err).
				Str("mode", h.sink.Mode()).
				Int("record", i).
				Int("records_total", len(records)).
				Int("records_sent", i).
				Str("host", event.Host).
				Msg("Failed to forward event to Splunk")
			h.archiveRemaining(ctx, event, records[i+1:])
			return Response{}, err
		}
	}

	h.logger.Info().Str("mode", h.sink.Mode()).Int("records_sent", len(records)).Msg("Forwarded events")
	return Response{Status: StatusOK, RecordsSent: len(records)}, nil
}

// archiveRemaining stores the failed event and everything not yet attempted.
// Archive errors are only logged; the delivery error is what the runtime sees.
func (h *Handler) archiveRemaining(ctx context.Context, failed *models.Event, rest []models.Record) {
	if h.archive == nil {
		return
	}
	events := make([]*models.Event, 0, len(rest)+1)
	events = append(events, failed)
	for _, record := range rest {
		events = append(events, h.normalizer.Normalize(record))
	}
	if err := h.archive.Store(ctx, events); err != nil {
		h.logger.Error().Err(err).Int("events", len(events)).Msg("Failed to archive undelivered events")
		return
	}
	h.logger.Warn().Int("events", len(events)).Msg("Archived undelivered events")
}

// truncate cuts b to at most n bytes without splitting a UTF-8 sequence
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return string(b[:n])
}
