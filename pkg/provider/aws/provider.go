package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/mosajjal/findinghec/pkg/models"
	"github.com/mosajjal/findinghec/pkg/provider"
)

const (
	// DetailField carries the finding in EventBridge events
	DetailField = "detail"
	// RecordsField carries the batch in SQS and SNS events
	RecordsField = "Records"
)

// Provider implements the CloudProvider interface for AWS
type Provider struct{}

// NewProvider creates a new AWS provider
func NewProvider() provider.CloudProvider {
	return &Provider{}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "aws"
}

// ParseBatch decodes an EventBridge, SQS or direct invocation payload.
// Numbers are kept as json.Number so ids and counters are forwarded exactly.
func (p *Provider) ParseBatch(ctx context.Context, payload []byte) ([]models.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var event interface{}
	if err := dec.Decode(&event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal event: unexpected data after top-level value")
	}
	return Extract(event), nil
}

// Extract picks the records out of a decoded payload. detail wins over
// Records, and both are skipped when empty; otherwise the payload itself is
// the record. A single object is returned as a one element slice.
func Extract(event interface{}) []models.Record {
	candidate := event
	if m, ok := event.(map[string]interface{}); ok {
		if v := m[DetailField]; truthy(v) {
			candidate = v
		} else if v := m[RecordsField]; truthy(v) {
			candidate = v
		}
	}

	if list, ok := candidate.([]interface{}); ok {
		records := make([]models.Record, len(list))
		copy(records, list)
		return records
	}
	return []models.Record{candidate}
}

// truthy mirrors how loosely typed producers treat "no value": null, false,
// zero and empty containers all count as absent.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case map[string]interface{}:
		return len(t) > 0
	case []interface{}:
		return len(t) > 0
	default:
		return true
	}
}
