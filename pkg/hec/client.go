package hec

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/mosajjal/Go-Splunk-HTTP/splunk/v2"
	"github.com/rs/zerolog"

	"github.com/mosajjal/findinghec/pkg/models"
)

// Config holds HEC client configuration
type Config struct {
	Endpoint       string
	Token          string
	ChannelID      string
	Source         string
	SourceType     string
	Index          string
	TLSSkipVerify  bool
	Proxy          string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	DryRun         bool
}

// Sink delivers one event. Implementations are chosen once at cold start.
type Sink interface {
	Send(ctx context.Context, event *models.Event) error
	// Mode is "live" or "dry-run"
	Mode() string
}

// DeliveryError wraps any failure to hand an event to HEC, whether the
// request failed in transport or the collector answered with an error status.
type DeliveryError struct {
	Endpoint string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("splunk HEC rejected event at %s: %v", e.Endpoint, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// NewSink returns the dry-run sink when cfg.DryRun is set, the live one otherwise
func NewSink(cfg Config, logger zerolog.Logger) (Sink, error) {
	if cfg.DryRun {
		return NewDryRunSink(cfg.Endpoint, logger), nil
	}
	return NewLiveSink(cfg)
}

// LiveSink posts each event to HEC in its own request. No retries.
type LiveSink struct {
	endpoint string
	client   *splunk.Client
}

// NewLiveSink creates a sink backed by a Splunk HEC client
func NewLiveSink(cfg Config) (*LiveSink, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("no HEC endpoint configured")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("no HEC token configured")
	}

	httpClient, err := newHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	channelID := cfg.ChannelID
	if channelID == "" {
		channelID = uuid.New().String()
	} else {
		if _, err := uuid.Parse(channelID); err != nil {
			channelID = uuid.New().String()
		}
	}

	client := splunk.NewClient(
		httpClient,
		cfg.Endpoint,
		cfg.Token,
		channelID,
		cfg.Source,
		cfg.SourceType,
		cfg.Index,
	)
	return &LiveSink{endpoint: cfg.Endpoint, client: client}, nil
}

// newHTTPClient bounds connection setup by ConnectTimeout and waiting for the
// response by ReadTimeout.
func newHTTPClient(cfg Config) (*http.Client, error) {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	rt := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: cfg.TLSSkipVerify},
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		rt.Proxy = http.ProxyURL(proxyURL)
	}

	var timeout time.Duration
	if cfg.ConnectTimeout > 0 && cfg.ReadTimeout > 0 {
		timeout = cfg.ConnectTimeout + cfg.ReadTimeout
	}
	return &http.Client{Timeout: timeout, Transport: statusTransport{next: rt}}, nil
}

// Send posts a single event
func (s *LiveSink) Send(ctx context.Context, event *models.Event) error {
	if err := ctx.Err(); err != nil {
		return &DeliveryError{Endpoint: s.endpoint, Err: err}
	}
	splunkEvent := &splunk.Event{
		Time:       splunk.EventTime{Time: event.Time},
		Host:       event.Host,
		Source:     event.Source,
		SourceType: event.SourceType,
		Index:      event.Index,
		Event:      event.Event,
	}
	if err := s.client.LogEvents([]*splunk.Event{splunkEvent}); err != nil {
		return &DeliveryError{Endpoint: s.endpoint, Err: err}
	}
	return nil
}

// Mode implements Sink
func (s *LiveSink) Mode() string {
	return "live"
}
